package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"alsaji_export_v1_202608/internal/model"
	"alsaji_export_v1_202608/internal/repository"
	"alsaji_export_v1_202608/internal/service"
	"alsaji_export_v1_202608/pkg/utils"
)

// ==================== 测试替身 ====================

type stubProductRepo struct {
	products   []model.Product
	lastFilter repository.ProductFilter
}

func (s *stubProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	s.lastFilter = filter
	out := []model.Product{}
	for _, p := range s.products {
		if filter.CategoryID > 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.BrandID > 0 && p.BrandID != filter.BrandID {
			continue
		}
		if len(filter.IDs) > 0 {
			hit := false
			for _, id := range filter.IDs {
				if id == p.ID {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (s *stubProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.products, nil
}
func (s *stubProductRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.products)), nil
}
func (s *stubProductRepo) ReplaceAll(ctx context.Context, products []model.Product) error {
	return nil
}

type stubCategoryRepo struct {
	categories []model.Category
}

func (s *stubCategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return &s.categories[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	for i := range s.categories {
		if s.categories[i].Slug == slug {
			return &s.categories[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	return s.categories, nil
}
func (s *stubCategoryRepo) ReplaceAll(ctx context.Context, categories []model.Category) error {
	return nil
}

type stubBrandRepo struct {
	brands []model.Brand
}

func (s *stubBrandRepo) GetByID(ctx context.Context, id int64) (*model.Brand, error) {
	for i := range s.brands {
		if s.brands[i].ID == id {
			return &s.brands[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBrandRepo) GetBySlug(ctx context.Context, slug string) (*model.Brand, error) {
	for i := range s.brands {
		if s.brands[i].Slug == slug {
			return &s.brands[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBrandRepo) ListAll(ctx context.Context) ([]model.Brand, error) {
	return s.brands, nil
}
func (s *stubBrandRepo) ReplaceAll(ctx context.Context, brands []model.Brand) error { return nil }

type stubBranchRepo struct{}

func (stubBranchRepo) ListAll(ctx context.Context) ([]model.Branch, error)    { return nil, nil }
func (stubBranchRepo) ReplaceAll(ctx context.Context, b []model.Branch) error { return nil }

type stubVehicleBrandRepo struct{}

func (stubVehicleBrandRepo) ListAll(ctx context.Context) ([]model.VehicleBrand, error) {
	return nil, nil
}
func (stubVehicleBrandRepo) ReplaceAll(ctx context.Context, b []model.VehicleBrand) error {
	return nil
}

type stubVehicleModelRepo struct{}

func (stubVehicleModelRepo) ListAll(ctx context.Context) ([]model.VehicleModel, error) {
	return nil, nil
}
func (stubVehicleModelRepo) ListByBrand(ctx context.Context, brandID int64) ([]model.VehicleModel, error) {
	return nil, nil
}
func (stubVehicleModelRepo) ReplaceAll(ctx context.Context, m []model.VehicleModel) error {
	return nil
}

type stubCompatRepo struct {
	records []model.CompatibilityRecord
}

func (s *stubCompatRepo) ListAll(ctx context.Context) ([]model.CompatibilityRecord, error) {
	return s.records, nil
}
func (s *stubCompatRepo) ListByProduct(ctx context.Context, productID int64) ([]model.CompatibilityRecord, error) {
	return nil, nil
}
func (s *stubCompatRepo) ListByVehicleModel(ctx context.Context, vehicleModelID int64) ([]model.CompatibilityRecord, error) {
	return nil, nil
}
func (s *stubCompatRepo) ReplaceAll(ctx context.Context, records []model.CompatibilityRecord) error {
	return nil
}

// ==================== 装配 ====================

func setupCatalogRouter(products *stubProductRepo, compat *stubCompatRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	// 快照缓存跨用例共享，先清理避免读到上个用例的数据
	utils.DeleteCache(snapshotCacheKey)

	ctl := NewCatalogController(
		products,
		&stubCategoryRepo{categories: []model.Category{
			{SyncedModel: model.SyncedModel{ID: 7}, Name: "Filters", Slug: "filters"},
			{SyncedModel: model.SyncedModel{ID: 8}, Name: "Brakes", Slug: "brakes"},
		}},
		&stubBrandRepo{brands: []model.Brand{
			{SyncedModel: model.SyncedModel{ID: 3}, Name: "Toyota", Slug: "toyota"},
		}},
		stubBranchRepo{},
		stubVehicleBrandRepo{},
		stubVehicleModelRepo{},
		compat,
		service.NewAggregateService(),
		service.NewCompatService(),
	)

	r := gin.New()
	r.GET("/api/products", ctl.GetProducts)
	return r
}

func catalogProducts() *stubProductRepo {
	return &stubProductRepo{products: []model.Product{
		{SyncedModel: model.SyncedModel{ID: 1}, Name: "Oil Filter", Price: 15000, CategoryID: 7, CategoryName: "Filters", BrandID: 3, BrandName: "Toyota"},
		{SyncedModel: model.SyncedModel{ID: 2}, Name: "Brake Pad", Price: 80000, CategoryID: 8, CategoryName: "Brakes", BrandID: 3, BrandName: "Toyota"},
	}}
}

type productListResp struct {
	Products []struct {
		ID int64 `json:"id"`
	} `json:"products"`
	Total int64 `json:"total"`
}

func getProducts(t *testing.T, r *gin.Engine, query string) productListResp {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products"+query, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, body = %s", w.Code, w.Body.String())
	}
	var resp productListResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

// ==================== 用例 ====================

func TestGetProductsByCategorySlug(t *testing.T) {
	products := catalogProducts()
	r := setupCatalogRouter(products, &stubCompatRepo{})

	resp := getProducts(t, r, "?category=filters")
	if resp.Total != 1 || len(resp.Products) != 1 || resp.Products[0].ID != 1 {
		t.Errorf("slug 过滤结果错误: %+v", resp)
	}
	if products.lastFilter.CategoryID != 7 {
		t.Errorf("slug 应解析为分类 id 7, got %d", products.lastFilter.CategoryID)
	}
}

func TestGetProductsByBrandSlug(t *testing.T) {
	products := catalogProducts()
	r := setupCatalogRouter(products, &stubCompatRepo{})

	resp := getProducts(t, r, "?brand=toyota")
	if resp.Total != 2 {
		t.Errorf("品牌 slug 过滤结果错误: %+v", resp)
	}
	if products.lastFilter.BrandID != 3 {
		t.Errorf("slug 应解析为品牌 id 3, got %d", products.lastFilter.BrandID)
	}
}

func TestGetProductsUnknownSlugEmpty(t *testing.T) {
	r := setupCatalogRouter(catalogProducts(), &stubCompatRepo{})

	resp := getProducts(t, r, "?brand=bosch")
	if resp.Total != 0 || len(resp.Products) != 0 {
		t.Errorf("未知 slug 应返回空结果: %+v", resp)
	}
}

func TestGetProductsVehicleFilter(t *testing.T) {
	from, to := 2010, 2015
	compat := &stubCompatRepo{records: []model.CompatibilityRecord{
		{
			SyncedModel:      model.SyncedModel{ID: 100},
			ProductID:        1,
			VehicleModelID:   20,
			VehicleModelName: "Camry",
			FromYear:         &from,
			ToYear:           &to,
		},
	}}

	r := setupCatalogRouter(catalogProducts(), compat)
	resp := getProducts(t, r, "?model=20&year=2012")
	if resp.Total != 1 || len(resp.Products) != 1 || resp.Products[0].ID != 1 {
		t.Errorf("车辆适配过滤结果错误: %+v", resp)
	}

	r = setupCatalogRouter(catalogProducts(), compat)
	resp = getProducts(t, r, "?model=20&year=2016")
	if resp.Total != 0 || len(resp.Products) != 0 {
		t.Errorf("区间外年份应返回空结果: %+v", resp)
	}
}
