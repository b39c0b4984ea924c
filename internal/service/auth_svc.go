package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"sourcing_dev_v1_202608/internal/middleware"
	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// ==================== 服务实现 ====================

// AuthService 登录鉴权服务
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService 创建鉴权服务
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// ==================== 种子数据 ====================

// EnsureAdmin 首次启动种入管理员账号
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, &model.SysUser{
		Username: username,
		Password: string(hash),
		Role:     "admin",
		IsActive: true,
	}); err != nil {
		return fmt.Errorf("种入管理员账号失败: %v", err)
	}
	log.Printf("[鉴权] 已种入管理员账号: %s", username)
	return nil
}

// ==================== 登录 ====================

// LoginResult 登录结果
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	Role         string `json:"role"`
}

// Login 账号密码登录，签发 Token 对
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, errors.New("账号已停用")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("签发 Token 失败: %v", err)
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Username:     user.Username,
		Role:         user.Role,
	}, nil
}
