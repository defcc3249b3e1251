package service

import (
	"sort"

	"alsaji_export_v1_202608/internal/model"
)

// ==================== 适配索引产物 ====================

// CompatibleProduct 车型条目下的商品摘要
type CompatibleProduct struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Price    int64  `json:"price"`
	InStock  bool   `json:"in_stock"`
	ImageURL string `json:"image_url,omitempty"`
}

// VehicleEntry 适配索引中的车型条目
type VehicleEntry struct {
	VehicleModelID     int64               `json:"vehicle_model_id"`
	VehicleModelName   string              `json:"vehicle_model_name"`
	BrandID            int64               `json:"brand_id,omitempty"`
	BrandName          string              `json:"brand_name,omitempty"`
	YearRange          string              `json:"year_range"`
	FromYear           *int                `json:"from_year,omitempty"`
	ToYear             *int                `json:"to_year,omitempty"`
	CompatibleProducts []CompatibleProduct `json:"compatible_products"`
}

// VehicleSummary 反查结果：商品适配的车型（不含商品列表）
type VehicleSummary struct {
	VehicleModelID   int64  `json:"vehicle_model_id"`
	VehicleModelName string `json:"vehicle_model_name"`
	BrandID          int64  `json:"brand_id,omitempty"`
	BrandName        string `json:"brand_name,omitempty"`
	YearRange        string `json:"year_range"`
	FromYear         *int   `json:"from_year,omitempty"`
	ToYear           *int   `json:"to_year,omitempty"`
}

// VehicleProductMatch 点查结果：商品 + 命中的适配元数据
type VehicleProductMatch struct {
	CompatibleProduct
	VehicleModelID   int64  `json:"vehicle_model_id"`
	VehicleModelName string `json:"vehicle_model_name"`
	YearRange        string `json:"year_range"`
}

// CompatibilityIndex 以车型 id 为键的适配索引
type CompatibilityIndex struct {
	entries map[int64]*VehicleEntry
}

// ==================== 适配索引服务 ====================

// CompatService 车型适配索引的构建与查询
type CompatService struct{}

// NewCompatService 创建适配索引服务
func NewCompatService() *CompatService {
	return &CompatService{}
}

// BuildIndex 构建适配索引
// 同车型多条记录合并到同一条目；零商品条目不进入最终输出
func (s *CompatService) BuildIndex(snapshot *model.Snapshot) *CompatibilityIndex {
	productByID := make(map[int64]*model.Product, len(snapshot.Products))
	for i := range snapshot.Products {
		productByID[snapshot.Products[i].ID] = &snapshot.Products[i]
	}

	index := &CompatibilityIndex{entries: make(map[int64]*VehicleEntry)}
	for _, rec := range snapshot.Compatibility {
		product, ok := productByID[rec.ProductID]
		if !ok {
			continue
		}

		entry := index.entries[rec.VehicleModelID]
		if entry == nil {
			entry = &VehicleEntry{
				VehicleModelID:   rec.VehicleModelID,
				VehicleModelName: rec.VehicleModelName,
				BrandID:          rec.BrandID,
				BrandName:        rec.BrandName,
				YearRange:        rec.YearRangeLabel(),
				FromYear:         rec.FromYear,
				ToYear:           rec.ToYear,
			}
			index.entries[rec.VehicleModelID] = entry
		}

		if containsProduct(entry.CompatibleProducts, product.ID) {
			continue
		}
		entry.CompatibleProducts = append(entry.CompatibleProducts, CompatibleProduct{
			ID:       product.ID,
			Name:     product.Name,
			Code:     product.Code,
			Price:    product.Price,
			InStock:  product.InStock,
			ImageURL: product.ImageURL,
		})
	}
	return index
}

func containsProduct(products []CompatibleProduct, id int64) bool {
	for _, p := range products {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Entries 索引条目按车型 id 升序，零商品条目已剔除
func (idx *CompatibilityIndex) Entries() []VehicleEntry {
	entries := make([]VehicleEntry, 0, len(idx.entries))
	for _, e := range idx.entries {
		if len(e.CompatibleProducts) == 0 {
			continue
		}
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].VehicleModelID < entries[j].VehicleModelID
	})
	return entries
}

// GetCompatibleVehicles 反查商品适配的车型列表
func (idx *CompatibilityIndex) GetCompatibleVehicles(productID int64) []VehicleSummary {
	var vehicles []VehicleSummary
	for _, e := range idx.Entries() {
		if !containsProduct(e.CompatibleProducts, productID) {
			continue
		}
		vehicles = append(vehicles, VehicleSummary{
			VehicleModelID:   e.VehicleModelID,
			VehicleModelName: e.VehicleModelName,
			BrandID:          e.BrandID,
			BrandName:        e.BrandName,
			YearRange:        e.YearRange,
			FromYear:         e.FromYear,
			ToYear:           e.ToYear,
		})
	}
	return vehicles
}

// GetProductsByVehicle 按车辆条件点查商品
// brandID/modelID 为 0 表示不过滤该维度；year 为 0 表示不过滤年份，
// 年份区间缺省端视为无界
func (s *CompatService) GetProductsByVehicle(snapshot *model.Snapshot, brandID, modelID int64, year int) []VehicleProductMatch {
	productByID := make(map[int64]*model.Product, len(snapshot.Products))
	for i := range snapshot.Products {
		productByID[snapshot.Products[i].ID] = &snapshot.Products[i]
	}

	seen := make(map[int64]struct{})
	var matches []VehicleProductMatch
	for _, rec := range snapshot.Compatibility {
		if modelID > 0 && rec.VehicleModelID != modelID {
			continue
		}
		if brandID > 0 && rec.BrandID != brandID {
			continue
		}
		if year > 0 && !rec.MatchesYear(year) {
			continue
		}

		product, ok := productByID[rec.ProductID]
		if !ok {
			continue
		}
		if _, dup := seen[product.ID]; dup {
			continue
		}
		seen[product.ID] = struct{}{}

		matches = append(matches, VehicleProductMatch{
			CompatibleProduct: CompatibleProduct{
				ID:       product.ID,
				Name:     product.Name,
				Code:     product.Code,
				Price:    product.Price,
				InStock:  product.InStock,
				ImageURL: product.ImageURL,
			},
			VehicleModelID:   rec.VehicleModelID,
			VehicleModelName: rec.VehicleModelName,
			YearRange:        rec.YearRangeLabel(),
		})
	}
	return matches
}
