package repository

import (
	"context"

	"gorm.io/gorm"

	"alsaji_export_v1_202608/internal/model"
)

// ExportRunRepository 导出轮次仓储接口
type ExportRunRepository interface {
	Create(ctx context.Context, run *model.ExportRun) error
	Update(ctx context.Context, run *model.ExportRun) error
	Latest(ctx context.Context) (*model.ExportRun, error)
	LatestSuccessful(ctx context.Context) (*model.ExportRun, error)
	List(ctx context.Context, limit int) ([]model.ExportRun, error)
}

type exportRunRepo struct {
	db *gorm.DB
}

// NewExportRunRepository 创建导出轮次仓储
func NewExportRunRepository(db *gorm.DB) ExportRunRepository {
	return &exportRunRepo{db: db}
}

func (r *exportRunRepo) Create(ctx context.Context, run *model.ExportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *exportRunRepo) Update(ctx context.Context, run *model.ExportRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *exportRunRepo) Latest(ctx context.Context) (*model.ExportRun, error) {
	var run model.ExportRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *exportRunRepo) LatestSuccessful(ctx context.Context) (*model.ExportRun, error) {
	var run model.ExportRun
	err := r.db.WithContext(ctx).
		Where("status = ?", model.RunStatusSuccess).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *exportRunRepo) List(ctx context.Context, limit int) ([]model.ExportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []model.ExportRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
