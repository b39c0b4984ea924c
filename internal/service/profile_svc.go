package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
)

// ==================== 业务常量 ====================

const (
	// DefaultImageApiUrl 种子配置与新建配置共用的默认图片同步端点
	DefaultImageApiUrl = "https://api.marketplace.example.com/v1/products/images"

	defaultProfileName = "默认渠道"
)

// ErrLastProfile 禁止删除最后一条配置
var ErrLastProfile = errors.New("至少保留一条渠道配置，无法删除")

// ==================== 服务实现 ====================

// ProfileService 渠道配置服务
// 不变量：仓储里永远至少一条配置，活动指针永远指向存在的配置；
// 每次变更都立即同步落盘，不做批量或防抖
type ProfileService struct {
	profileRepo repository.ProfileRepository
	settingRepo repository.SettingRepository
}

// NewProfileService 创建渠道配置服务
func NewProfileService(profileRepo repository.ProfileRepository, settingRepo repository.SettingRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		settingRepo: settingRepo,
	}
}

// ==================== 种子数据 ====================

// EnsureSeed 首次启动种入默认配置并激活
func (s *ProfileService) EnsureSeed(ctx context.Context) error {
	count, err := s.profileRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return s.ensureActivePointer(ctx)
	}

	profile := &model.SyncProfile{
		ID:             uuid.NewString(),
		Name:           defaultProfileName,
		ImageApiUrl:    DefaultImageApiUrl,
		Unite:          "Piece",
		Weight:         "1kg",
		DeliveryDayMin: 7,
		DeliveryDayMax: 15,
		WarrantyDay:    7,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return fmt.Errorf("种入默认配置失败: %v", err)
	}
	return s.settingRepo.Set(ctx, model.SettingActiveProfileID, profile.ID)
}

// ensureActivePointer 指针丢失或指向已删除配置时回退到首条
func (s *ProfileService) ensureActivePointer(ctx context.Context) error {
	activeID, err := s.settingRepo.Get(ctx, model.SettingActiveProfileID)
	if err == nil {
		if _, err := s.profileRepo.GetByID(ctx, activeID); err == nil {
			return nil
		}
	}

	profiles, err := s.profileRepo.List(ctx)
	if err != nil || len(profiles) == 0 {
		return err
	}
	return s.settingRepo.Set(ctx, model.SettingActiveProfileID, profiles[0].ID)
}

// ==================== CRUD ====================

// List 全部配置，创建序
func (s *ProfileService) List(ctx context.Context) ([]model.SyncProfile, error) {
	return s.profileRepo.List(ctx)
}

// Get 单条配置
func (s *ProfileService) Get(ctx context.Context, id string) (*model.SyncProfile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// Create 新建配置：固定命名规则 + 默认端点，与首条种子一致
func (s *ProfileService) Create(ctx context.Context) (*model.SyncProfile, error) {
	count, err := s.profileRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	profile := &model.SyncProfile{
		ID:             uuid.NewString(),
		Name:           fmt.Sprintf("渠道配置 %d", count+1),
		ImageApiUrl:    DefaultImageApiUrl,
		Unite:          "Piece",
		Weight:         "1kg",
		DeliveryDayMin: 7,
		DeliveryDayMax: 15,
		WarrantyDay:    7,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("创建配置失败: %v", err)
	}
	return profile, nil
}

// Update 整体保存
func (s *ProfileService) Update(ctx context.Context, profile *model.SyncProfile) error {
	if _, err := s.profileRepo.GetByID(ctx, profile.ID); err != nil {
		return fmt.Errorf("配置不存在: %v", err)
	}
	return s.profileRepo.Update(ctx, profile)
}

// Delete 删除配置
// 最后一条禁止删除；删除活动配置后，指针回退到剩余的首条
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	count, err := s.profileRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastProfile
	}

	activeID, _ := s.settingRepo.Get(ctx, model.SettingActiveProfileID)

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除配置失败: %v", err)
	}

	if activeID == id {
		profiles, err := s.profileRepo.List(ctx)
		if err != nil {
			return err
		}
		if len(profiles) > 0 {
			return s.settingRepo.Set(ctx, model.SettingActiveProfileID, profiles[0].ID)
		}
	}
	return nil
}

// ==================== 活动指针 ====================

// SetActive 切换活动配置
func (s *ProfileService) SetActive(ctx context.Context, id string) error {
	if _, err := s.profileRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("配置不存在: %v", err)
	}
	return s.settingRepo.Set(ctx, model.SettingActiveProfileID, id)
}

// GetActive 当前活动配置
func (s *ProfileService) GetActive(ctx context.Context) (*model.SyncProfile, error) {
	activeID, err := s.settingRepo.Get(ctx, model.SettingActiveProfileID)
	if err == nil {
		if profile, err := s.profileRepo.GetByID(ctx, activeID); err == nil {
			return profile, nil
		}
	}

	// 指针异常时回退首条并自愈
	if err := s.ensureActivePointer(ctx); err != nil {
		return nil, err
	}
	activeID, err = s.settingRepo.Get(ctx, model.SettingActiveProfileID)
	if err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, activeID)
}
