package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alsaji_export_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListAll(ctx context.Context) ([]model.Category, error)
	ReplaceAll(ctx context.Context, categories []model.Category) error
}

// BrandRepository 品牌仓储接口
type BrandRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Brand, error)
	GetBySlug(ctx context.Context, slug string) (*model.Brand, error)
	ListAll(ctx context.Context) ([]model.Brand, error)
	ReplaceAll(ctx context.Context, brands []model.Brand) error
}

// BranchRepository 门店仓储接口
type BranchRepository interface {
	ListAll(ctx context.Context) ([]model.Branch, error)
	ReplaceAll(ctx context.Context, branches []model.Branch) error
}

// ==================== 分类实现 ====================

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) ReplaceAll(ctx context.Context, categories []model.Category) error {
	return replaceAll(r.db.WithContext(ctx), categories, func(c model.Category) int64 { return c.ID },
		[]string{"name", "slug", "image_url", "parent_id", "parent_name", "updated_at"})
}

// ==================== 品牌实现 ====================

type brandRepo struct {
	db *gorm.DB
}

// NewBrandRepository 创建品牌仓储
func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepo{db: db}
}

func (r *brandRepo) GetByID(ctx context.Context, id int64) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepo) GetBySlug(ctx context.Context, slug string) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepo) ListAll(ctx context.Context) ([]model.Brand, error) {
	var brands []model.Brand
	err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error
	return brands, err
}

func (r *brandRepo) ReplaceAll(ctx context.Context, brands []model.Brand) error {
	return replaceAll(r.db.WithContext(ctx), brands, func(b model.Brand) int64 { return b.ID },
		[]string{"name", "slug", "logo_url", "updated_at"})
}

// ==================== 门店实现 ====================

type branchRepo struct {
	db *gorm.DB
}

// NewBranchRepository 创建门店仓储
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepo{db: db}
}

func (r *branchRepo) ListAll(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).Order("id ASC").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) ReplaceAll(ctx context.Context, branches []model.Branch) error {
	return replaceAll(r.db.WithContext(ctx), branches, func(b model.Branch) int64 { return b.ID },
		[]string{"name", "slug", "updated_at"})
}

// ==================== 通用全量替换 ====================

// replaceAll 批量 upsert 后删除本轮未出现的记录，事务内执行
func replaceAll[T any](db *gorm.DB, records []T, idOf func(T) int64, updateCols []string) error {
	var zero T
	return db.Transaction(func(tx *gorm.DB) error {
		if len(records) == 0 {
			return tx.Where("1 = 1").Delete(&zero).Error
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(updateCols),
		}).CreateInBatches(records, 500).Error; err != nil {
			return err
		}

		ids := make([]int64, 0, len(records))
		for _, rec := range records {
			ids = append(ids, idOf(rec))
		}
		return tx.Where("id NOT IN ?", ids).Delete(&zero).Error
	})
}
