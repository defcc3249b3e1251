package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"alsaji_export_v1_202608/internal/model"
	"alsaji_export_v1_202608/pkg/odoo"
)

// ==================== 快照抓取服务 ====================

const (
	defaultPageSize     = 500
	defaultFetchWorkers = 4
	pricelistModel      = "product.pricelist"
	pricelistMethod     = "price_get"
)

// CatalogService 从 Odoo 拉取整轮数据快照
// 参考资源并行拉取、失败降级为空集；商品为必需资源，拉取失败整轮中止
type CatalogService struct {
	client     *odoo.Client
	normalizer *Normalizer
	pageSize   int
	workers    int
}

// NewCatalogService 创建快照抓取服务
func NewCatalogService(client *odoo.Client, normalizer *Normalizer) *CatalogService {
	return &CatalogService{
		client:     client,
		normalizer: normalizer,
		pageSize:   defaultPageSize,
		workers:    defaultFetchWorkers,
	}
}

// FetchSnapshot 拉取一轮完整快照
// 顺序：参考资源并行 → 构建分类查表 → 商品逐页（页后紧跟价表调用）
func (s *CatalogService) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	snapshot := &model.Snapshot{
		Degraded: make(map[string]string),
	}

	var (
		rawCategories    []odoo.RawCategory
		rawBrands        []odoo.RawBrand
		rawBranches      []odoo.RawBranch
		rawVehicleBrands []odoo.RawVehicleBrand
		rawVehicleModels []odoo.RawVehicleModel
		rawCompatibility []odoo.RawCompatibility
	)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, s.workers)
	)

	// degrade 记录降级资源，持锁写入
	degrade := func(resource string, err error) {
		mu.Lock()
		snapshot.Degraded[resource] = err.Error()
		mu.Unlock()
		log.Printf("[Catalog] %s 拉取失败，降级为空集: %v", resource, err)
	}

	run := func(resource string, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := fetch(); err != nil {
				degrade(resource, err)
			}
		}()
	}

	run("categories", func() error {
		records, err := odoo.FetchAll[odoo.RawCategory](ctx, s.client, "product.public.category", nil,
			[]string{"name", "parent_id", "image_url"}, s.pageSize)
		if err != nil {
			return err
		}
		mu.Lock()
		rawCategories = records
		mu.Unlock()
		return nil
	})

	run("brands", func() error {
		records, err := odoo.FetchAll[odoo.RawBrand](ctx, s.client, "product.brand", nil,
			[]string{"name", "logo_url"}, s.pageSize)
		if err != nil {
			return err
		}
		mu.Lock()
		rawBrands = records
		mu.Unlock()
		return nil
	})

	run("branches", func() error {
		records, err := odoo.FetchAll[odoo.RawBranch](ctx, s.client, "res.company", nil,
			[]string{"name"}, s.pageSize)
		if err != nil {
			return err
		}
		mu.Lock()
		rawBranches = records
		mu.Unlock()
		return nil
	})

	run("vehicle_brands", func() error {
		records, err := odoo.FetchAll[odoo.RawVehicleBrand](ctx, s.client, "fleet.vehicle.model.brand", nil,
			[]string{"name", "logo_url"}, s.pageSize)
		if err != nil {
			return err
		}
		mu.Lock()
		rawVehicleBrands = records
		mu.Unlock()
		return nil
	})

	run("vehicle_models", func() error {
		records, err := odoo.FetchAll[odoo.RawVehicleModel](ctx, s.client, "fleet.vehicle.model", nil,
			[]string{"name", "brand_id"}, s.pageSize)
		if err != nil {
			return err
		}
		mu.Lock()
		rawVehicleModels = records
		mu.Unlock()
		return nil
	})

	run("compatibility_records", func() error {
		records, err := odoo.FetchAll[odoo.RawCompatibility](ctx, s.client, "product.vehicle.compatibility", nil,
			[]string{"product_tmpl_id", "vehicle_model_id", "brand_id", "from_year", "to_year", "categ_tag"}, s.pageSize)
		if err != nil {
			return err
		}
		mu.Lock()
		rawCompatibility = records
		mu.Unlock()
		return nil
	})

	wg.Wait()

	// 商品归一化依赖分类查表，必须在参考资源之后
	s.normalizer.LoadCategories(rawCategories)

	products, err := s.fetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取商品失败: %w", err)
	}
	snapshot.Products = products

	for _, raw := range rawCategories {
		snapshot.Categories = append(snapshot.Categories, s.normalizer.ToCategory(raw))
	}
	for _, raw := range rawBrands {
		snapshot.Brands = append(snapshot.Brands, s.normalizer.ToBrand(raw))
	}
	for _, raw := range rawBranches {
		snapshot.Branches = append(snapshot.Branches, s.normalizer.ToBranch(raw))
	}
	for _, raw := range rawVehicleBrands {
		snapshot.VehicleBrands = append(snapshot.VehicleBrands, s.normalizer.ToVehicleBrand(raw))
	}
	for _, raw := range rawVehicleModels {
		snapshot.VehicleModels = append(snapshot.VehicleModels, s.normalizer.ToVehicleModel(raw))
	}
	for _, raw := range rawCompatibility {
		snapshot.Compatibility = append(snapshot.Compatibility, s.normalizer.ToCompatibility(raw))
	}

	log.Printf("[Catalog] 快照拉取完成: 商品 %d / 分类 %d / 品牌 %d / 适配 %d (降级 %d)",
		len(snapshot.Products), len(snapshot.Categories), len(snapshot.Brands),
		len(snapshot.Compatibility), len(snapshot.Degraded))
	return snapshot, nil
}

// fetchProducts 逐页拉取商品，每页之后立刻发起价表调用
// 价表按请求 id 顺序对位返回，失败时该页降级为列表价
func (s *CatalogService) fetchProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product

	fields := []string{
		"name", "default_code", "list_price", "standard_price",
		"description_sale", "qty_available",
		"public_categ_ids", "product_brand_id", "branch_ids", "has_image",
	}

	err := odoo.FetchPages(ctx, s.client, "product.template", nil, fields, s.pageSize,
		func(page []odoo.RawProduct) error {
			prices, ok := s.pricelistForPage(ctx, page)
			for i, raw := range page {
				var pricelistPrice float64
				if ok && i < len(prices) {
					pricelistPrice = prices[i]
				}
				products = append(products, s.normalizer.ToProduct(raw, pricelistPrice, ok))
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// pricelistForPage 价表批量调用，与页内商品按位置对齐
func (s *CatalogService) pricelistForPage(ctx context.Context, page []odoo.RawProduct) ([]float64, bool) {
	ids := make([]int64, 0, len(page))
	for _, p := range page {
		ids = append(ids, p.ID)
	}

	raw, err := s.client.ExecuteKw(ctx, pricelistModel, pricelistMethod, []interface{}{ids}, nil)
	if err != nil {
		log.Printf("[Catalog] 价表调用失败，本页回落列表价: %v", err)
		return nil, false
	}

	values, err := odoo.DecodeRecords[odoo.FloatOrZero](raw)
	if err != nil {
		log.Printf("[Catalog] 价表结果解析失败，本页回落列表价: %v", err)
		return nil, false
	}

	prices := make([]float64, len(values))
	for i, v := range values {
		prices[i] = v.Float64()
	}
	return prices, true
}
