package service

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"alsaji_export_v1_202608/internal/model"
	"alsaji_export_v1_202608/pkg/odoo"
	"alsaji_export_v1_202608/pkg/utils"
)

// 描述进入搜索词的最大长度（按 rune 截断）
const searchDescriptionLimit = 100

// ==================== 归一化服务 ====================

// Normalizer 将上游原始记录转换为本地模型
// 分类名称查表按轮构建，跨轮不复用
type Normalizer struct {
	baseURL      string
	categoryName map[int64]string
	prices       *PriceResolver
}

// NewNormalizer 创建归一化服务
func NewNormalizer(baseURL string, prices *PriceResolver) *Normalizer {
	return &Normalizer{
		baseURL:      strings.TrimRight(baseURL, "/"),
		categoryName: make(map[int64]string),
		prices:       prices,
	}
}

// LoadCategories 构建本轮分类 id → 名称查表
func (n *Normalizer) LoadCategories(categories []odoo.RawCategory) {
	n.categoryName = make(map[int64]string, len(categories))
	for _, c := range categories {
		n.categoryName[c.ID] = c.Name.String()
	}
}

// ToProduct 原始商品 → 本地商品
// pricelistPrice 为价表解析价（hasPricelist=false 表示价表降级，使用列表价）
func (n *Normalizer) ToProduct(raw odoo.RawProduct, pricelistPrice float64, hasPricelist bool) model.Product {
	name := raw.Name.String()
	code := raw.DefaultCode.String()

	categoryID, categoryName := n.firstCategory(raw.CategIDs)
	brandID, brandName := refParts(raw.BrandID)

	stockQty := int(raw.QtyAvailable.Float64())
	if stockQty < 0 {
		stockQty = 0
	}
	imageURL := ""
	if raw.HasImage {
		imageURL = fmt.Sprintf("%s/web/image/product.template/%d/image_512", n.baseURL, raw.ID)
	}

	p := model.Product{
		SyncedModel:   model.SyncedModel{ID: raw.ID},
		Name:          name,
		Code:          code,
		Slug:          utils.Slugify(name),
		Price:         n.prices.Resolve(raw.ListPrice.Float64(), pricelistPrice, hasPricelist),
		OriginalPrice: raw.ListPrice.Float64(),
		CostPrice:     raw.StandardPrice.Float64(),
		CategoryID:    categoryID,
		CategoryName:  categoryName,
		BrandID:       brandID,
		BrandName:     brandName,
		Description:   raw.Description.String(),
		StockQty:      stockQty,
		InStock:       stockQty > 0,
		ImageURL:      imageURL,
		BranchIDs:     pq.Int64Array(raw.BranchIDs),
	}
	p.SearchTerms = pq.StringArray(buildSearchTerms(p))
	return p
}

// firstCategory 多分类只取 id 列表第一个元素；首元素查表未命中视为未分类
func (n *Normalizer) firstCategory(ids odoo.IDList) (int64, string) {
	if len(ids) == 0 {
		return 0, ""
	}
	name, ok := n.categoryName[ids[0]]
	if !ok {
		return 0, ""
	}
	return ids[0], name
}

// buildSearchTerms 小写去重的搜索词：名称 / 编码 / 分类 / 品牌 / 描述前缀
func buildSearchTerms(p model.Product) []string {
	candidates := []string{p.Name, p.Code, p.CategoryName, p.BrandName}
	if p.Description != "" {
		runes := []rune(p.Description)
		if len(runes) > searchDescriptionLimit {
			runes = runes[:searchDescriptionLimit]
		}
		candidates = append(candidates, string(runes))
	}

	seen := make(map[string]struct{}, len(candidates))
	terms := make([]string, 0, len(candidates))
	for _, c := range candidates {
		t := strings.ToLower(strings.TrimSpace(c))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

// ToCategory 原始分类 → 本地分类
func (n *Normalizer) ToCategory(raw odoo.RawCategory) model.Category {
	name := raw.Name.String()
	parentID, parentName := refParts(raw.ParentID)
	return model.Category{
		SyncedModel: model.SyncedModel{ID: raw.ID},
		Name:        name,
		Slug:        utils.Slugify(name),
		ImageURL:    raw.ImageURL.String(),
		ParentID:    parentID,
		ParentName:  parentName,
	}
}

// ToBrand 原始品牌 → 本地品牌
func (n *Normalizer) ToBrand(raw odoo.RawBrand) model.Brand {
	name := raw.Name.String()
	return model.Brand{
		SyncedModel: model.SyncedModel{ID: raw.ID},
		Name:        name,
		Slug:        utils.Slugify(name),
		LogoURL:     raw.LogoURL.String(),
	}
}

// ToBranch 原始门店 → 本地门店
func (n *Normalizer) ToBranch(raw odoo.RawBranch) model.Branch {
	name := raw.Name.String()
	return model.Branch{
		SyncedModel: model.SyncedModel{ID: raw.ID},
		Name:        name,
		Slug:        utils.Slugify(name),
	}
}

// ToVehicleBrand 原始车辆品牌 → 本地车辆品牌
func (n *Normalizer) ToVehicleBrand(raw odoo.RawVehicleBrand) model.VehicleBrand {
	name := raw.Name.String()
	return model.VehicleBrand{
		SyncedModel: model.SyncedModel{ID: raw.ID},
		Name:        name,
		Slug:        utils.Slugify(name),
		LogoURL:     raw.LogoURL.String(),
	}
}

// ToVehicleModel 原始车型 → 本地车型
func (n *Normalizer) ToVehicleModel(raw odoo.RawVehicleModel) model.VehicleModel {
	name := raw.Name.String()
	brandID, brandName := refParts(raw.BrandID)
	return model.VehicleModel{
		SyncedModel: model.SyncedModel{ID: raw.ID},
		Name:        name,
		Slug:        utils.Slugify(name),
		BrandID:     brandID,
		BrandName:   brandName,
	}
}

// ToCompatibility 原始适配记录 → 本地适配记录
func (n *Normalizer) ToCompatibility(raw odoo.RawCompatibility) model.CompatibilityRecord {
	productID, _ := refParts(raw.ProductID)
	modelID, modelName := refParts(raw.VehicleModel)
	brandID, brandName := refParts(raw.BrandID)
	return model.CompatibilityRecord{
		SyncedModel:      model.SyncedModel{ID: raw.ID},
		ProductID:        productID,
		VehicleModelID:   modelID,
		VehicleModelName: modelName,
		BrandID:          brandID,
		BrandName:        brandName,
		FromYear:         raw.FromYear.Ptr(),
		ToYear:           raw.ToYear.Ptr(),
		CategTag:         raw.CategTag.String(),
	}
}

func refParts(ref odoo.Many2One) (int64, string) {
	if !ref.Valid {
		return 0, ""
	}
	return ref.ID, ref.Name
}
