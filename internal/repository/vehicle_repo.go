package repository

import (
	"context"

	"gorm.io/gorm"

	"alsaji_export_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// VehicleBrandRepository 车辆品牌仓储接口
type VehicleBrandRepository interface {
	ListAll(ctx context.Context) ([]model.VehicleBrand, error)
	ReplaceAll(ctx context.Context, brands []model.VehicleBrand) error
}

// VehicleModelRepository 车型仓储接口
type VehicleModelRepository interface {
	ListAll(ctx context.Context) ([]model.VehicleModel, error)
	ListByBrand(ctx context.Context, brandID int64) ([]model.VehicleModel, error)
	ReplaceAll(ctx context.Context, models []model.VehicleModel) error
}

// ==================== 车辆品牌实现 ====================

type vehicleBrandRepo struct {
	db *gorm.DB
}

// NewVehicleBrandRepository 创建车辆品牌仓储
func NewVehicleBrandRepository(db *gorm.DB) VehicleBrandRepository {
	return &vehicleBrandRepo{db: db}
}

func (r *vehicleBrandRepo) ListAll(ctx context.Context) ([]model.VehicleBrand, error) {
	var brands []model.VehicleBrand
	err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error
	return brands, err
}

func (r *vehicleBrandRepo) ReplaceAll(ctx context.Context, brands []model.VehicleBrand) error {
	return replaceAll(r.db.WithContext(ctx), brands, func(b model.VehicleBrand) int64 { return b.ID },
		[]string{"name", "slug", "logo_url", "updated_at"})
}

// ==================== 车型实现 ====================

type vehicleModelRepo struct {
	db *gorm.DB
}

// NewVehicleModelRepository 创建车型仓储
func NewVehicleModelRepository(db *gorm.DB) VehicleModelRepository {
	return &vehicleModelRepo{db: db}
}

func (r *vehicleModelRepo) ListAll(ctx context.Context) ([]model.VehicleModel, error) {
	var models []model.VehicleModel
	err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error
	return models, err
}

func (r *vehicleModelRepo) ListByBrand(ctx context.Context, brandID int64) ([]model.VehicleModel, error) {
	var models []model.VehicleModel
	err := r.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("name ASC").
		Find(&models).Error
	return models, err
}

func (r *vehicleModelRepo) ReplaceAll(ctx context.Context, models []model.VehicleModel) error {
	return replaceAll(r.db.WithContext(ctx), models, func(m model.VehicleModel) int64 { return m.ID },
		[]string{"name", "slug", "brand_id", "brand_name", "updated_at"})
}
