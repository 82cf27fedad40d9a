package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anvilworks/cms-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

// Create inserts the comment and applies the counter side effects (parent
// replies_count, post comment counters) in one transaction.
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		if c.ParentID != nil {
			if err := tx.Model(&models.Comment{}).Where("id = ?", *c.ParentID).
				UpdateColumn("replies_count", gorm.Expr("replies_count + ?", 1)).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"comment_count": gorm.Expr("comment_count + ?", 1),
		}
		if c.Status == models.CommentApproved {
			updates["approved_comment_count"] = gorm.Expr("approved_comment_count + ?", 1)
		}
		return tx.Model(&models.Post{}).Where("id = ?", c.PostID).UpdateColumns(updates).Error
	})
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Mutate runs fn on the comment inside a SELECT ... FOR UPDATE transaction.
// Concurrent mutations of the same comment serialize on the row lock, so the
// callback always sees the latest committed state.
func (r *CommentRepository) Mutate(ctx context.Context, id uint, fn func(*models.Comment) error) (*models.Comment, error) {
	var out *models.Comment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
			return translate(err)
		}
		if err := fn(&c); err != nil {
			return err
		}
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		out = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete permanently removes the comment and rolls back its counter side
// effects. Callers are responsible for only hard-deleting comments without
// replies.
func (r *CommentRepository) Delete(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Comment{}, c.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if c.ParentID != nil {
			if err := tx.Model(&models.Comment{}).Where("id = ? AND replies_count > 0", *c.ParentID).
				UpdateColumn("replies_count", gorm.Expr("replies_count - ?", 1)).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"comment_count": gorm.Expr("comment_count - ?", 1),
		}
		if c.Status == models.CommentApproved {
			updates["approved_comment_count"] = gorm.Expr("approved_comment_count - ?", 1)
		}
		return tx.Model(&models.Post{}).Where("id = ?", c.PostID).UpdateColumns(updates).Error
	})
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID uint, statuses []models.CommentStatus) ([]models.Comment, error) {
	var comments []models.Comment
	q := r.DB.WithContext(ctx).Where("post_id = ?", postID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) ListPending(ctx context.Context, limit int, opts ListOptions) ([]models.Comment, int64, error) {
	opts = opts.Normalize()
	if limit > 0 && limit < opts.Limit {
		opts.Limit = limit
	}

	q := r.DB.WithContext(ctx).Model(&models.Comment{}).Where("status = ?", models.CommentPending)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	order := fmt.Sprintf("%s %s", sortColumn(opts.SortBy), opts.SortOrder)
	if err := q.Order(order).Offset(opts.Offset()).Limit(opts.Limit).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// sortColumn whitelists sortBy values so pagination params never reach the
// query raw.
func sortColumn(s string) string {
	switch s {
	case "score", "likes", "replies_count":
		return s
	default:
		return "created_at"
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
