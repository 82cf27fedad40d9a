package repository

import (
	"context"

	"github.com/anvilworks/cms-api/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var p models.Post
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PostRepository) IncrementCounters(ctx context.Context, postID uint, totalDelta, approvedDelta int) error {
	updates := map[string]interface{}{}
	if totalDelta != 0 {
		updates["comment_count"] = gorm.Expr("comment_count + ?", totalDelta)
	}
	if approvedDelta != 0 {
		updates["approved_comment_count"] = gorm.Expr("approved_comment_count + ?", approvedDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(updates).Error
}
