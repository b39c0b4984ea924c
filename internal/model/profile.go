package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 数据库模型 ====================

// SyncProfile 同步渠道配置
// 一组目标市场的端点、凭证和固定商品字段，全局必须始终保留至少一条
type SyncProfile struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"size:128" json:"name"`

	// 端点与凭证
	ImageApiUrl   string `gorm:"size:512" json:"imageApiUrl"`
	ProductApiUrl string `gorm:"size:512" json:"productApiUrl"` // 可为空，为空则跳过元数据同步
	ApiToken      string `gorm:"size:512" json:"apiToken"`

	// 目标市场固定字段
	CategoryID      int    `json:"categoryId"`
	SubCategoryID   int    `json:"subCategoryId"`
	ChildCategoryID int    `json:"childCategoryId"`
	SellerID        int    `json:"sellerId"`
	Unite           string `gorm:"size:32" json:"unite"`
	Weight          string `gorm:"size:32" json:"weight"`
	DeliveryDayMin  int    `json:"deliveryDayMin"`
	DeliveryDayMax  int    `json:"deliveryDayMax"`
	WarrantyDay     int    `json:"warrantyDay"`
	WarrantyInfo    string `gorm:"size:255" json:"warrantyInformation"`
}

func (SyncProfile) TableName() string { return "sync_profiles" }

// AppSetting 键值配置表（目前只存 active_profile_id 指针）
type AppSetting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:255"`
	UpdatedAt time.Time
}

func (AppSetting) TableName() string { return "app_settings" }

// 设置键
const (
	SettingActiveProfileID = "active_profile_id"
)
