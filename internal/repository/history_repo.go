package repository

import (
	"context"

	"gorm.io/gorm"

	"sourcing_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// HistoryRepository 导出历史仓储接口
// 只追加：全仓储没有 Update/Delete，历史只会变长
type HistoryRepository interface {
	Append(ctx context.Context, record *model.ExportRecord) error
	GetByID(ctx context.Context, id string) (*model.ExportRecord, error)
	List(ctx context.Context) ([]model.ExportRecord, error)
	Count(ctx context.Context) (int64, error)
}

// ==================== 仓储实现 ====================

type historyRepo struct {
	db *gorm.DB
}

// NewHistoryRepository 创建导出历史仓储
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Append(ctx context.Context, record *model.ExportRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *historyRepo) GetByID(ctx context.Context, id string) (*model.ExportRecord, error) {
	var record model.ExportRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// List 最新在前
func (r *historyRepo) List(ctx context.Context) ([]model.ExportRecord, error) {
	var records []model.ExportRecord
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&records).Error
	return records, err
}

func (r *historyRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ExportRecord{}).Count(&count).Error
	return count, err
}
