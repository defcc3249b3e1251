package model

// ==========================================
// 目录参考实体：分类 / 品牌 / 门店 / 车辆品牌 / 车型
// 均为 Odoo 侧记录的本地镜像
// ==========================================

// Category 商品分类
type Category struct {
	SyncedModel

	Name     string `gorm:"size:255;index" json:"name"`
	Slug     string `gorm:"size:255" json:"slug"`
	ImageURL string `gorm:"size:512" json:"image_url,omitempty"`

	// 父分类（0 = 顶级）
	ParentID   int64  `gorm:"index;default:0" json:"-"`
	ParentName string `gorm:"size:255" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// ParentRef 父分类引用，顶级分类返回 nil
func (c *Category) ParentRef() *EntityRef {
	if c.ParentID == 0 {
		return nil
	}
	return &EntityRef{ID: c.ParentID, Name: c.ParentName}
}

// Brand 商品品牌
// Categories / ProductCount 为派生值：每轮从当前商品集重新计算，
// 绝不独立于商品集缓存（上游系统不提供）
type Brand struct {
	SyncedModel

	Name    string `gorm:"size:255;index" json:"name"`
	Slug    string `gorm:"size:255" json:"slug"`
	LogoURL string `gorm:"size:512" json:"logo_url,omitempty"`

	ProductCount int        `gorm:"-" json:"product_count"`
	Categories   []Category `gorm:"-" json:"categories,omitempty"`
}

func (Brand) TableName() string {
	return "brands"
}

// Branch 门店/分公司
type Branch struct {
	SyncedModel

	Name string `gorm:"size:255" json:"name"`
	Slug string `gorm:"size:255" json:"slug"`
}

func (Branch) TableName() string {
	return "branches"
}

// VehicleBrand 车辆品牌
type VehicleBrand struct {
	SyncedModel

	Name    string `gorm:"size:255;index" json:"name"`
	Slug    string `gorm:"size:255" json:"slug"`
	LogoURL string `gorm:"size:512" json:"logo_url,omitempty"`
}

func (VehicleBrand) TableName() string {
	return "vehicle_brands"
}

// VehicleModel 车型
type VehicleModel struct {
	SyncedModel

	Name      string `gorm:"size:255;index" json:"name"`
	Slug      string `gorm:"size:255" json:"slug"`
	BrandID   int64  `gorm:"index;default:0" json:"brand_id"`
	BrandName string `gorm:"size:255" json:"brand_name"`
}

func (VehicleModel) TableName() string {
	return "vehicle_models"
}
