package repository

import (
	"context"

	"gorm.io/gorm"

	"sourcing_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// ProfileRepository 同步渠道配置仓储接口
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.SyncProfile) error
	GetByID(ctx context.Context, id string) (*model.SyncProfile, error)
	Update(ctx context.Context, profile *model.SyncProfile) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.SyncProfile, error)
	Count(ctx context.Context) (int64, error)
}

// ==================== 仓储实现 ====================

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepository 创建渠道配置仓储
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.SyncProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.SyncProfile, error) {
	var profile model.SyncProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *model.SyncProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.SyncProfile{}, "id = ?", id).Error
}

// List 按创建时间升序：第一条即"首个配置"，删除活动配置时回退的目标
func (r *profileRepo) List(ctx context.Context) ([]model.SyncProfile, error) {
	var profiles []model.SyncProfile
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SyncProfile{}).Count(&count).Error
	return count, err
}
