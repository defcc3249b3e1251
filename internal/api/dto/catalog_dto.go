package dto

// ProductListReq 商品列表查询参数
// 分类/品牌可按 id 或 slug 过滤，id 优先；make/model/year 为车辆适配过滤
type ProductListReq struct {
	CategoryID   int64  `form:"category_id"`
	CategorySlug string `form:"category"`
	BrandID      int64  `form:"brand_id"`
	BrandSlug    string `form:"brand"`
	Keyword      string `form:"keyword"`
	MinPrice     int64  `form:"min_price"`
	MaxPrice     int64  `form:"max_price"`
	InStock      bool   `form:"in_stock"`
	Make         int64  `form:"make"`
	Model        int64  `form:"model"`
	Year         int    `form:"year"`
	Page         int    `form:"page,default=1"`
	PageSize     int    `form:"page_size,default=20"`
}

// VehicleProductsReq 按车辆条件查商品
type VehicleProductsReq struct {
	BrandID int64 `form:"brand_id"`
	ModelID int64 `form:"model_id"`
	Year    int   `form:"year"`
}

// VehicleModelsReq 车型列表查询参数
type VehicleModelsReq struct {
	BrandID int64 `form:"brand_id"`
}

// SearchSuggestReq 搜索建议查询参数
type SearchSuggestReq struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit,default=10"`
}

// TriggerExportReq 手动触发导出
type TriggerExportReq struct {
	Force bool `json:"force"`
}

// ExportStatusResp 导出状态
type ExportStatusResp struct {
	Running   bool        `json:"running"`
	LatestRun interface{} `json:"latest_run,omitempty"`
}
