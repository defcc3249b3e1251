package repository

import (
	"context"

	"gorm.io/gorm"

	"alsaji_export_v1_202608/internal/model"
)

// CompatibilityRepository 适配记录仓储接口
type CompatibilityRepository interface {
	ListAll(ctx context.Context) ([]model.CompatibilityRecord, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.CompatibilityRecord, error)
	ListByVehicleModel(ctx context.Context, vehicleModelID int64) ([]model.CompatibilityRecord, error)
	ReplaceAll(ctx context.Context, records []model.CompatibilityRecord) error
}

type compatibilityRepo struct {
	db *gorm.DB
}

// NewCompatibilityRepository 创建适配记录仓储
func NewCompatibilityRepository(db *gorm.DB) CompatibilityRepository {
	return &compatibilityRepo{db: db}
}

func (r *compatibilityRepo) ListAll(ctx context.Context) ([]model.CompatibilityRecord, error) {
	var records []model.CompatibilityRecord
	err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error
	return records, err
}

func (r *compatibilityRepo) ListByProduct(ctx context.Context, productID int64) ([]model.CompatibilityRecord, error) {
	var records []model.CompatibilityRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&records).Error
	return records, err
}

func (r *compatibilityRepo) ListByVehicleModel(ctx context.Context, vehicleModelID int64) ([]model.CompatibilityRecord, error) {
	var records []model.CompatibilityRecord
	err := r.db.WithContext(ctx).
		Where("vehicle_model_id = ?", vehicleModelID).
		Find(&records).Error
	return records, err
}

func (r *compatibilityRepo) ReplaceAll(ctx context.Context, records []model.CompatibilityRecord) error {
	return replaceAll(r.db.WithContext(ctx), records, func(rec model.CompatibilityRecord) int64 { return rec.ID },
		[]string{
			"product_id", "vehicle_model_id", "vehicle_model_name",
			"brand_id", "brand_name", "from_year", "to_year", "categ_tag", "updated_at",
		})
}
