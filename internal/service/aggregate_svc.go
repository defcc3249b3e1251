package service

import (
	"sort"
	"strconv"
	"time"

	"alsaji_export_v1_202608/internal/model"
	"alsaji_export_v1_202608/pkg/utils"
)

// ==================== 聚合产物 ====================

// FilterFacet 过滤面：分类/品牌/门店/车辆维度共用
type FilterFacet struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Count    int    `json:"count"`
	ImageURL string `json:"image_url,omitempty"`
	ParentID int64  `json:"parent_id,omitempty"`
}

// PriceBucket 价格区间：[Min, Max) 半开，Max 为 nil 表示无上界
type PriceBucket struct {
	Min   int64  `json:"min"`
	Max   *int64 `json:"max,omitempty"`
	Count int    `json:"count"`
	Label string `json:"label"`
}

// FilterData 过滤面总览文档
type FilterData struct {
	Categories    []FilterFacet `json:"categories"`
	Brands        []FilterFacet `json:"brands"`
	PriceRanges   []PriceBucket `json:"price_ranges"`
	VehicleBrands []FilterFacet `json:"vehicle_brands"`
	VehicleModels []FilterFacet `json:"vehicle_models"`
	Branches      []FilterFacet `json:"branches"`
	LastUpdated   time.Time     `json:"last_updated"`
}

// SearchEntry 搜索索引条目
type SearchEntry struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Code         string   `json:"code,omitempty"`
	CategoryID   int64    `json:"category_id,omitempty"`
	CategoryName string   `json:"category_name,omitempty"`
	BrandID      int64    `json:"brand_id,omitempty"`
	BrandName    string   `json:"brand_name,omitempty"`
	Price        int64    `json:"price"`
	StockQty     int      `json:"stock_qty"`
	InStock      bool     `json:"in_stock"`
	Slug         string   `json:"slug"`
	SearchTerms  []string `json:"search_terms"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// ==================== 聚合服务 ====================

// AggregateService 全部为快照上的只读多遍扫描，不修改输入
type AggregateService struct{}

// NewAggregateService 创建聚合服务
func NewAggregateService() *AggregateService {
	return &AggregateService{}
}

// BuildFilterData 生成过滤面总览
// 分类/品牌引用为空的商品不参与对应面的计数，不设 Unknown 面
func (a *AggregateService) BuildFilterData(snapshot *model.Snapshot) *FilterData {
	return &FilterData{
		Categories:    a.categoryFacets(snapshot),
		Brands:        a.brandFacets(snapshot),
		PriceRanges:   a.PriceBuckets(snapshot.Products),
		VehicleBrands: a.vehicleBrandFacets(snapshot),
		VehicleModels: a.vehicleModelFacets(snapshot),
		Branches:      a.branchFacets(snapshot),
		LastUpdated:   time.Now(),
	}
}

func (a *AggregateService) categoryFacets(snapshot *model.Snapshot) []FilterFacet {
	counts := make(map[int64]int)
	for _, p := range snapshot.Products {
		if ref := p.CategoryRef(); ref != nil {
			counts[ref.ID]++
		}
	}

	facets := make([]FilterFacet, 0, len(counts))
	for _, c := range snapshot.Categories {
		n := counts[c.ID]
		if n == 0 {
			continue
		}
		facets = append(facets, FilterFacet{
			ID:       c.ID,
			Name:     c.Name,
			Slug:     c.Slug,
			Count:    n,
			ImageURL: c.ImageURL,
			ParentID: c.ParentID,
		})
	}
	sortFacets(facets)
	return facets
}

func (a *AggregateService) brandFacets(snapshot *model.Snapshot) []FilterFacet {
	counts := make(map[int64]int)
	for _, p := range snapshot.Products {
		if ref := p.BrandRef(); ref != nil {
			counts[ref.ID]++
		}
	}

	facets := make([]FilterFacet, 0, len(counts))
	for _, b := range snapshot.Brands {
		n := counts[b.ID]
		if n == 0 {
			continue
		}
		facets = append(facets, FilterFacet{
			ID:       b.ID,
			Name:     b.Name,
			Slug:     b.Slug,
			Count:    n,
			ImageURL: b.LogoURL,
		})
	}
	sortFacets(facets)
	return facets
}

func (a *AggregateService) branchFacets(snapshot *model.Snapshot) []FilterFacet {
	counts := make(map[int64]int)
	for _, p := range snapshot.Products {
		for _, id := range p.BranchIDs {
			counts[id]++
		}
	}

	facets := make([]FilterFacet, 0, len(counts))
	for _, b := range snapshot.Branches {
		n := counts[b.ID]
		if n == 0 {
			continue
		}
		facets = append(facets, FilterFacet{
			ID:    b.ID,
			Name:  b.Name,
			Slug:  b.Slug,
			Count: n,
		})
	}
	sortFacets(facets)
	return facets
}

// vehicleModelFacets 车型面：计数为该车型下去重后的适配商品数
func (a *AggregateService) vehicleModelFacets(snapshot *model.Snapshot) []FilterFacet {
	known := make(map[int64]struct{}, len(snapshot.Products))
	for _, p := range snapshot.Products {
		known[p.ID] = struct{}{}
	}

	productsOf := make(map[int64]map[int64]struct{})
	for _, rec := range snapshot.Compatibility {
		if _, ok := known[rec.ProductID]; !ok {
			continue
		}
		set := productsOf[rec.VehicleModelID]
		if set == nil {
			set = make(map[int64]struct{})
			productsOf[rec.VehicleModelID] = set
		}
		set[rec.ProductID] = struct{}{}
	}

	facets := make([]FilterFacet, 0, len(productsOf))
	for _, m := range snapshot.VehicleModels {
		n := len(productsOf[m.ID])
		if n == 0 {
			continue
		}
		facets = append(facets, FilterFacet{
			ID:       m.ID,
			Name:     m.Name,
			Slug:     m.Slug,
			Count:    n,
			ParentID: m.BrandID,
		})
	}
	sortFacets(facets)
	return facets
}

// vehicleBrandFacets 车辆品牌面：计数为该品牌全部车型下去重后的适配商品数
func (a *AggregateService) vehicleBrandFacets(snapshot *model.Snapshot) []FilterFacet {
	known := make(map[int64]struct{}, len(snapshot.Products))
	for _, p := range snapshot.Products {
		known[p.ID] = struct{}{}
	}

	productsOf := make(map[int64]map[int64]struct{})
	for _, rec := range snapshot.Compatibility {
		if rec.BrandID == 0 {
			continue
		}
		if _, ok := known[rec.ProductID]; !ok {
			continue
		}
		set := productsOf[rec.BrandID]
		if set == nil {
			set = make(map[int64]struct{})
			productsOf[rec.BrandID] = set
		}
		set[rec.ProductID] = struct{}{}
	}

	facets := make([]FilterFacet, 0, len(productsOf))
	for _, b := range snapshot.VehicleBrands {
		n := len(productsOf[b.ID])
		if n == 0 {
			continue
		}
		facets = append(facets, FilterFacet{
			ID:       b.ID,
			Name:     b.Name,
			Slug:     b.Slug,
			Count:    n,
			ImageURL: b.LogoURL,
		})
	}
	sortFacets(facets)
	return facets
}

// sortFacets 计数降序，同计数按名称升序
func sortFacets(facets []FilterFacet) {
	sort.SliceStable(facets, func(i, j int) bool {
		if facets[i].Count != facets[j].Count {
			return facets[i].Count > facets[j].Count
		}
		return facets[i].Name < facets[j].Name
	})
}

// ==================== 价格区间 ====================

// 区间步进表：按观测到的最高价选档
var (
	priceStepsHigh = []int64{0, 100000, 250000, 500000, 1000000, 2500000, 5000000}
	priceStepsMid  = []int64{0, 25000, 50000, 100000, 250000, 500000}
	priceStepsLow  = []int64{0, 5000, 10000, 25000, 50000, 100000}
)

// PriceBuckets 价格区间划分
// 全部同价时输出覆盖该价的单一区间；否则按最高价选步进表，
// 生成半开区间 [step[i], step[i+1])，末位无上界，零计数区间不输出
func (a *AggregateService) PriceBuckets(products []model.Product) []PriceBucket {
	prices := make([]int64, 0, len(products))
	for _, p := range products {
		prices = append(prices, p.Price)
	}
	if len(prices) == 0 {
		return nil
	}

	minPrice, maxPrice := prices[0], prices[0]
	for _, v := range prices[1:] {
		if v < minPrice {
			minPrice = v
		}
		if v > maxPrice {
			maxPrice = v
		}
	}

	if minPrice == maxPrice {
		max := maxPrice
		return []PriceBucket{{
			Min:   minPrice,
			Max:   &max,
			Count: len(prices),
			Label: "IQD " + formatIQD(minPrice),
		}}
	}

	var steps []int64
	switch {
	case maxPrice > 1000000:
		steps = priceStepsHigh
	case maxPrice > 100000:
		steps = priceStepsMid
	default:
		steps = priceStepsLow
	}

	var buckets []PriceBucket
	for i, lo := range steps {
		var hi *int64
		if i+1 < len(steps) {
			v := steps[i+1]
			hi = &v
		}

		count := 0
		for _, p := range prices {
			if p < lo {
				continue
			}
			if hi != nil && p >= *hi {
				continue
			}
			count++
		}
		if count == 0 {
			continue
		}

		label := "IQD " + formatIQD(lo) + "+"
		if hi != nil {
			label = "IQD " + formatIQD(lo) + " - " + formatIQD(*hi)
		}
		buckets = append(buckets, PriceBucket{Min: lo, Max: hi, Count: count, Label: label})
	}
	return buckets
}

// formatIQD 千分位分组
func formatIQD(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// ==================== 品牌-分类交叉 ====================

// BrandSummaries 单遍扫描商品集：累计每个品牌的商品数与出现过的分类 id 集合，
// 再用一次批量查表把完整分类对象挂到品牌上
func (a *AggregateService) BrandSummaries(snapshot *model.Snapshot) []model.Brand {
	type acc struct {
		count      int
		categories map[int64]struct{}
	}
	byBrand := make(map[int64]*acc)

	for _, p := range snapshot.Products {
		ref := p.BrandRef()
		if ref == nil {
			continue
		}
		entry := byBrand[ref.ID]
		if entry == nil {
			entry = &acc{categories: make(map[int64]struct{})}
			byBrand[ref.ID] = entry
		}
		entry.count++
		if p.CategoryID > 0 {
			entry.categories[p.CategoryID] = struct{}{}
		}
	}

	categoryByID := make(map[int64]model.Category, len(snapshot.Categories))
	for _, c := range snapshot.Categories {
		categoryByID[c.ID] = c
	}

	brands := make([]model.Brand, 0, len(snapshot.Brands))
	for _, b := range snapshot.Brands {
		entry := byBrand[b.ID]
		if entry != nil {
			b.ProductCount = entry.count

			ids := make([]int64, 0, len(entry.categories))
			for id := range entry.categories {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			for _, id := range ids {
				if c, ok := categoryByID[id]; ok {
					b.Categories = append(b.Categories, c)
				}
			}
		}
		brands = append(brands, b)
	}
	return brands
}

// ==================== 搜索索引 ====================

// BuildSearchIndex 扁平搜索索引，顺序与商品集一致
func (a *AggregateService) BuildSearchIndex(products []model.Product) []SearchEntry {
	entries := make([]SearchEntry, 0, len(products))
	for _, p := range products {
		entry := SearchEntry{
			ID:           p.ID,
			Name:         p.Name,
			Code:         p.Code,
			CategoryID:   p.CategoryID,
			CategoryName: p.CategoryName,
			BrandID:      p.BrandID,
			BrandName:    p.BrandName,
			Price:        p.Price,
			StockQty:     p.StockQty,
			InStock:      p.InStock,
			Slug:         p.Slug,
			SearchTerms:  []string(p.SearchTerms),
			ImageURL:     p.ImageURL,
		}
		if entry.Slug == "" {
			entry.Slug = utils.Slugify(p.Name)
		}
		entries = append(entries, entry)
	}
	return entries
}
