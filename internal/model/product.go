package model

import (
	"encoding/json"

	"github.com/lib/pq"
)

// Product 归一化后的商品
// 价格为换算后的展示价（IQD，千位取整）；分类/品牌引用扁平化存储，
// 对外序列化时还原为 {id, name} 或 null
type Product struct {
	SyncedModel

	Name string `gorm:"size:512;index" json:"name"`
	Code string `gorm:"size:100;index" json:"code"`
	Slug string `gorm:"size:512" json:"slug"`

	// --- 价格 ---
	Price         int64   `gorm:"index;default:0" json:"price"`  // 换算后展示价
	OriginalPrice float64 `gorm:"default:0" json:"original_price"` // 上游原始标价
	CostPrice     float64 `gorm:"default:0" json:"cost_price"`

	// --- 引用（0 = 无） ---
	CategoryID   int64  `gorm:"index;default:0" json:"-"`
	CategoryName string `gorm:"size:255" json:"-"`
	BrandID      int64  `gorm:"index;default:0" json:"-"`
	BrandName    string `gorm:"size:255" json:"-"`

	Description string `gorm:"type:text" json:"description"`

	// --- 库存 ---
	StockQty int  `gorm:"default:0" json:"stock_quantity"`
	InStock  bool `gorm:"default:false;index" json:"in_stock"`

	ImageURL string `gorm:"size:512" json:"-"`

	// --- 数组类数据 (Postgres Array) ---
	BranchIDs   pq.Int64Array  `gorm:"type:bigint[]" json:"-"`
	SearchTerms pq.StringArray `gorm:"type:text[]" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// MarshalJSON 对外输出形态：扁平引用还原为 {id, name} 或 null，
// 数组字段缺省输出空列表而非 null
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	branchIDs := []int64(p.BranchIDs)
	if branchIDs == nil {
		branchIDs = []int64{}
	}
	searchTerms := []string(p.SearchTerms)
	if searchTerms == nil {
		searchTerms = []string{}
	}
	return json.Marshal(struct {
		alias
		Category    *EntityRef `json:"category"`
		Brand       *EntityRef `json:"brand"`
		ImageURL    *string    `json:"image_url"`
		BranchIDs   []int64    `json:"branch_ids"`
		SearchTerms []string   `json:"search_terms"`
	}{
		alias:       alias(p),
		Category:    p.CategoryRef(),
		Brand:       p.BrandRef(),
		ImageURL:    p.ImageURLPtr(),
		BranchIDs:   branchIDs,
		SearchTerms: searchTerms,
	})
}

// CategoryRef 解析后的分类引用，未分类返回 nil
func (p *Product) CategoryRef() *EntityRef {
	if p.CategoryID == 0 {
		return nil
	}
	return &EntityRef{ID: p.CategoryID, Name: p.CategoryName}
}

// BrandRef 解析后的品牌引用，无品牌返回 nil
func (p *Product) BrandRef() *EntityRef {
	if p.BrandID == 0 {
		return nil
	}
	return &EntityRef{ID: p.BrandID, Name: p.BrandName}
}

// ImageURLPtr 图片地址，无图返回 nil（序列化为 null）
func (p *Product) ImageURLPtr() *string {
	if p.ImageURL == "" {
		return nil
	}
	u := p.ImageURL
	return &u
}
