package repository

import (
	"context"
	"fmt"

	"github.com/anvilworks/cms-api/models"
	"gorm.io/gorm"
)

type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.DB.WithContext(ctx).Create(report).Error; err != nil {
		// The unique index on (comment_id, reporter_email) is the backstop
		// behind the registry's pre-insert dedup check.
		return translate(err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.DB.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (r *ReportRepository) Save(ctx context.Context, report *models.Report) error {
	return r.DB.WithContext(ctx).Save(report).Error
}

func (r *ReportRepository) ExistsFor(ctx context.Context, commentID uint, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Report{}).
		Where("comment_id = ? AND reporter_email = ?", commentID, email).
		Count(&count).Error
	return count > 0, err
}

func (r *ReportRepository) ListByStatus(ctx context.Context, status models.ReportStatus, opts ListOptions) ([]models.Report, int64, error) {
	opts = opts.Normalize()

	q := r.DB.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	order := fmt.Sprintf("created_at %s", opts.SortOrder)
	if err := q.Order(order).Offset(opts.Offset()).Limit(opts.Limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *ReportRepository) CountForComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}

	type row struct {
		CommentID uint
		Count     int64
	}
	var rows []row
	err := r.DB.WithContext(ctx).Model(&models.Report{}).
		Select("comment_id, COUNT(*) as count").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		counts[rw.CommentID] = rw.Count
	}
	return counts, nil
}
