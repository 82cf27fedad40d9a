package repository

import (
	"context"
	"errors"

	"github.com/anvilworks/cms-api/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ListOptions are the pagination params every list endpoint accepts.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.SortBy == "" {
		o.SortBy = "created_at"
	}
	if o.SortOrder != "asc" {
		o.SortOrder = "desc"
	}
	return o
}

func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// CommentStore is the persistence surface the comment service, voting ledger
// and report registry operate over. Mutate is the only write path for
// existing comments: the callback runs under a row lock so concurrent
// read-modify-write cycles cannot lose updates.
type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Mutate(ctx context.Context, id uint, fn func(*models.Comment) error) (*models.Comment, error)
	Delete(ctx context.Context, c *models.Comment) error
	ListByPost(ctx context.Context, postID uint, statuses []models.CommentStatus) ([]models.Comment, error)
	ListPending(ctx context.Context, limit int, opts ListOptions) ([]models.Comment, int64, error)
}

type PostStore interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	// IncrementCounters adjusts the aggregate comment counters. Counters are
	// secondary effects and may be transiently stale; they must never fail
	// the primary comment write.
	IncrementCounters(ctx context.Context, postID uint, totalDelta, approvedDelta int) error
}

type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	Save(ctx context.Context, r *models.Report) error
	ExistsFor(ctx context.Context, commentID uint, email string) (bool, error)
	ListByStatus(ctx context.Context, status models.ReportStatus, opts ListOptions) ([]models.Report, int64, error)
	CountForComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ListModerators(ctx context.Context) ([]models.User, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}
