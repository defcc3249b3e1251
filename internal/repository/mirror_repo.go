package repository

import (
	"context"
	"fmt"

	"alsaji_export_v1_202608/internal/model"
)

// SnapshotMirror 将整轮快照落库到各资源表
// 各表独立事务替换，顺序：参考数据在前，商品与适配记录在后
type SnapshotMirror struct {
	products      ProductRepository
	categories    CategoryRepository
	brands        BrandRepository
	branches      BranchRepository
	vehicleBrands VehicleBrandRepository
	vehicleModels VehicleModelRepository
	compatibility CompatibilityRepository
}

// NewSnapshotMirror 创建快照落库器
func NewSnapshotMirror(
	products ProductRepository,
	categories CategoryRepository,
	brands BrandRepository,
	branches BranchRepository,
	vehicleBrands VehicleBrandRepository,
	vehicleModels VehicleModelRepository,
	compatibility CompatibilityRepository,
) *SnapshotMirror {
	return &SnapshotMirror{
		products:      products,
		categories:    categories,
		brands:        brands,
		branches:      branches,
		vehicleBrands: vehicleBrands,
		vehicleModels: vehicleModels,
		compatibility: compatibility,
	}
}

// SaveSnapshot 全量替换各资源表
func (m *SnapshotMirror) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if err := m.categories.ReplaceAll(ctx, snapshot.Categories); err != nil {
		return fmt.Errorf("落库分类失败: %w", err)
	}
	if err := m.brands.ReplaceAll(ctx, snapshot.Brands); err != nil {
		return fmt.Errorf("落库品牌失败: %w", err)
	}
	if err := m.branches.ReplaceAll(ctx, snapshot.Branches); err != nil {
		return fmt.Errorf("落库门店失败: %w", err)
	}
	if err := m.vehicleBrands.ReplaceAll(ctx, snapshot.VehicleBrands); err != nil {
		return fmt.Errorf("落库车辆品牌失败: %w", err)
	}
	if err := m.vehicleModels.ReplaceAll(ctx, snapshot.VehicleModels); err != nil {
		return fmt.Errorf("落库车型失败: %w", err)
	}
	if err := m.products.ReplaceAll(ctx, snapshot.Products); err != nil {
		return fmt.Errorf("落库商品失败: %w", err)
	}
	if err := m.compatibility.ReplaceAll(ctx, snapshot.Compatibility); err != nil {
		return fmt.Errorf("落库适配记录失败: %w", err)
	}
	return nil
}
