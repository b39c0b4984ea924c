package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 状态常量 ====================

const (
	ExportStatusSuccess = "success"
)

// ==================== 数据库模型 ====================

// ExportRecord 导出历史（只追加，永不更新或删除）
type ExportRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	ProductName  string `gorm:"size:255" json:"productName"`
	ProfileName  string `gorm:"size:128" json:"profileName"`
	ImageCount   int    `json:"imageCount"`
	Status       string `gorm:"size:16" json:"status"`
	Price        float64 `json:"price"`
	CategoryPath string  `gorm:"size:255" json:"categoryPath"`

	// 导出时刻候选数据的完整快照，供后续只读查看
	Snapshot datatypes.JSON `json:"snapshot"`
}

func (ExportRecord) TableName() string { return "export_records" }
