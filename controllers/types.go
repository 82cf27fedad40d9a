package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/anvilworks/cms-api/repository"
	"github.com/anvilworks/cms-api/services"
	"github.com/gin-gonic/gin"
)

type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

func newPagination(opts repository.ListOptions, total int64) *PaginationMeta {
	opts = opts.Normalize()
	return &PaginationMeta{
		CurrentPage: opts.Page,
		PageSize:    opts.Limit,
		TotalItems:  total,
		TotalPages:  int(math.Ceil(float64(total) / float64(opts.Limit))),
	}
}

// ListQuery are the pagination params shared by every list endpoint.
type ListQuery struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=created_at score likes replies_count"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

func (q ListQuery) Options() repository.ListOptions {
	return repository.ListOptions{
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}.Normalize()
}

// statusFor maps the service error taxonomy onto HTTP statuses.
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindInvalidState, services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	message := err.Error()
	if kind == services.KindInternal {
		message = "Unexpected error"
	}
	c.JSON(statusFor(kind), StandardResponse{Success: false, Error: message})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: err.Error()})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: "invalid id"})
		return 0, false
	}
	return uint(id), true
}
