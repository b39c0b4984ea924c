package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sourcing_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// SettingRepository 键值配置仓储接口
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ErrSettingNotFound 配置键不存在
var ErrSettingNotFound = errors.New("配置项不存在")

// ==================== 仓储实现 ====================

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepository 创建键值配置仓储
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) Get(ctx context.Context, key string) (string, error) {
	var setting model.AppSetting
	err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Set UPSERT 写入，每次变更立即落盘
func (r *settingRepo) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.AppSetting{Key: key, Value: value}).Error
}
