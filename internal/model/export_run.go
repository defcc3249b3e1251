package model

import (
	"time"

	"gorm.io/datatypes"
)

// 导出轮次状态
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusSkipped = "skipped"
	RunStatusFailed  = "failed"
)

// ExportRun 一次导出轮次的记录
type ExportRun struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	RunID      string     `gorm:"size:64;uniqueIndex" json:"run_id"`
	Status     string     `gorm:"size:32;index" json:"status"`
	Forced     bool       `json:"forced"`
	DataHash   string     `gorm:"size:64" json:"data_hash,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	ProductCount       int `json:"product_count"`
	CategoryCount      int `json:"category_count"`
	BrandCount         int `json:"brand_count"`
	BranchCount        int `json:"branch_count"`
	VehicleBrandCount  int `json:"vehicle_brand_count"`
	VehicleModelCount  int `json:"vehicle_model_count"`
	CompatibilityCount int `json:"compatibility_count"`

	// Stats 附加统计（降级资源、耗时等），JSON 存储
	Stats    datatypes.JSON `json:"stats,omitempty"`
	ErrorMsg string         `gorm:"type:text" json:"error_msg,omitempty"`
}

func (ExportRun) TableName() string {
	return "export_runs"
}
