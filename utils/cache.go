package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is a small TTL'd LRU used for public thread pages. Entries expire
// rather than being invalidated on write; vote counts may lag by the TTL.
type Cache struct {
	lru *lru.Cache[string, cacheItem]
	ttl time.Duration
}

func NewCache(size int, ttl time.Duration) (*Cache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, ttl: ttl}, nil
}

func (c *Cache) Set(key string, data interface{}) {
	c.lru.Add(key, cacheItem{data: data, expiresAt: time.Now().Add(c.ttl)})
}

func (c *Cache) Get(key string) interface{} {
	item, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(item.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return item.data
}

func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}
