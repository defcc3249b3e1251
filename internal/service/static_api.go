package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"alsaji_export_v1_202608/internal/model"
)

// staticAPITemplate 浏览器端静态 API：内联数据 + 只读查询函数
// 占位顺序：products / categories / brands / filterData / searchIndex / vehicleIndex / lastUpdated
const staticAPITemplate = `// static_api.js - generated, do not edit
window.staticAPI = {
  products: %s,
  categories: %s,
  brands: %s,
  filterData: %s,
  searchIndex: %s,
  vehicleCompatibilityIndex: %s,
  lastUpdated: %q,

  getProducts: function(filters) {
    filters = filters || {};
    var result = this.products.slice();
    if (filters.category_id) {
      result = result.filter(function(p) { return p.category && p.category.id === filters.category_id; });
    }
    if (filters.brand_id) {
      result = result.filter(function(p) { return p.brand && p.brand.id === filters.brand_id; });
    }
    if (filters.in_stock) {
      result = result.filter(function(p) { return p.in_stock; });
    }
    if (filters.min_price) {
      result = result.filter(function(p) { return p.price >= filters.min_price; });
    }
    if (filters.max_price) {
      result = result.filter(function(p) { return p.price <= filters.max_price; });
    }
    if (filters.search) {
      var q = String(filters.search).toLowerCase();
      result = result.filter(function(p) {
        return (p.search_terms || []).some(function(t) { return t.indexOf(q) !== -1; });
      });
    }
    var total = result.length;
    var offset = filters.offset || 0;
    var limit = filters.limit || total;
    return { products: result.slice(offset, offset + limit), total: total };
  },

  getCategories: function() {
    return this.categories;
  },

  getBrands: function() {
    return this.brands;
  },

  searchSuggestions: function(query) {
    if (!query) { return []; }
    var q = String(query).toLowerCase();
    var seen = {};
    var suggestions = [];
    for (var i = 0; i < this.searchIndex.length && suggestions.length < 10; i++) {
      var entry = this.searchIndex[i];
      var hit = (entry.search_terms || []).some(function(t) { return t.indexOf(q) !== -1; });
      if (hit && !seen[entry.id]) {
        seen[entry.id] = true;
        suggestions.push({ id: entry.id, name: entry.name, slug: entry.slug });
      }
    }
    return suggestions;
  },

  getProductById: function(id) {
    var numeric = Number(id);
    for (var i = 0; i < this.products.length; i++) {
      if (this.products[i].id === numeric) { return this.products[i]; }
    }
    return null;
  },

  getProductsByVehicle: function(vehicleData) {
    vehicleData = vehicleData || {};
    var seen = {};
    var matches = [];
    for (var i = 0; i < this.vehicleCompatibilityIndex.length; i++) {
      var entry = this.vehicleCompatibilityIndex[i];
      if (vehicleData.model_id && entry.vehicle_model_id !== vehicleData.model_id) { continue; }
      if (vehicleData.brand_id && entry.brand_id !== vehicleData.brand_id) { continue; }
      if (vehicleData.year) {
        if (entry.from_year != null && vehicleData.year < entry.from_year) { continue; }
        if (entry.to_year != null && vehicleData.year > entry.to_year) { continue; }
      }
      var products = entry.compatible_products || [];
      for (var j = 0; j < products.length; j++) {
        if (!seen[products[j].id]) {
          seen[products[j].id] = true;
          matches.push(products[j]);
        }
      }
    }
    return matches;
  },

  getCompatibleVehicles: function(productId) {
    var numeric = Number(productId);
    var vehicles = [];
    for (var i = 0; i < this.vehicleCompatibilityIndex.length; i++) {
      var entry = this.vehicleCompatibilityIndex[i];
      var products = entry.compatible_products || [];
      var hit = products.some(function(p) { return p.id === numeric; });
      if (hit) {
        vehicles.push({
          vehicle_model_id: entry.vehicle_model_id,
          vehicle_model_name: entry.vehicle_model_name,
          brand_id: entry.brand_id,
          brand_name: entry.brand_name,
          year_range: entry.year_range
        });
      }
    }
    return vehicles;
  }
};
`

// writeStaticAPI 生成 static_api.js
func (s *ExportService) writeStaticAPI(jsonDir string, snapshot *model.Snapshot, brands []model.Brand,
	filterData *FilterData, searchIndex []SearchEntry, compatIndex []VehicleEntry) error {

	blobs := make([]string, 0, 6)
	for _, data := range []interface{}{
		snapshot.Products, snapshot.Categories, brands, filterData, searchIndex, compatIndex,
	} {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("序列化 static_api 数据失败: %w", err)
		}
		blobs = append(blobs, string(raw))
	}

	content := fmt.Sprintf(staticAPITemplate,
		blobs[0], blobs[1], blobs[2], blobs[3], blobs[4], blobs[5],
		time.Now().Format(time.RFC3339))

	path := filepath.Join(jsonDir, "static_api.js")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("写入 static_api.js 失败: %w", err)
	}
	return nil
}
