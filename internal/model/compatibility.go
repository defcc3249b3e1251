package model

import "strconv"

// CompatibilityRecord 商品-车型适配记录
// FromYear/ToYear 缺省表示该侧无界
type CompatibilityRecord struct {
	SyncedModel

	ProductID        int64  `gorm:"index" json:"product_id"`
	VehicleModelID   int64  `gorm:"index" json:"vehicle_model_id"`
	VehicleModelName string `gorm:"size:255" json:"vehicle_model_name"`
	BrandID          int64  `gorm:"index;default:0" json:"brand_id"`
	BrandName        string `gorm:"size:255" json:"brand_name"`
	FromYear         *int   `json:"from_year,omitempty"`
	ToYear           *int   `json:"to_year,omitempty"`
	CategTag         string `gorm:"size:255" json:"categ_tag,omitempty"`
}

func (CompatibilityRecord) TableName() string {
	return "compatibility_records"
}

// YearRangeLabel 年份区间展示文本
func (r *CompatibilityRecord) YearRangeLabel() string {
	switch {
	case r.FromYear != nil && r.ToYear != nil:
		return strconv.Itoa(*r.FromYear) + " - " + strconv.Itoa(*r.ToYear)
	case r.FromYear != nil:
		return strconv.Itoa(*r.FromYear) + "+"
	case r.ToYear != nil:
		return "- " + strconv.Itoa(*r.ToYear)
	default:
		return "All Years"
	}
}

// MatchesYear 判断年份是否落在适配区间内，缺省侧视为无界
func (r *CompatibilityRecord) MatchesYear(year int) bool {
	if r.FromYear != nil && year < *r.FromYear {
		return false
	}
	if r.ToYear != nil && year > *r.ToYear {
		return false
	}
	return true
}
