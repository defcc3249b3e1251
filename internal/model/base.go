package model

import (
	"time"
)

// SyncedModel 镜像实体公共字段
// 镜像表以 Odoo 侧稳定 ID 为主键，不用自增 ID，
// 每轮导出整表对齐（upsert + 清理失效行），不做软删除
type SyncedModel struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// EntityRef 归一化后的 {id, name} 引用
// many2one 字段解析失败或缺失时引用为 nil，绝不生成占位对象
type EntityRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
