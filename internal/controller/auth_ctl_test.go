package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sourcing_dev_v1_202608/internal/middleware"
	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
	"sourcing_dev_v1_202608/internal/service"
)

// ==================== 测试辅助 ====================

func setupAuthRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	db.AutoMigrate(&model.SysUser{})

	authSvc := service.NewAuthService(repository.NewUserRepository(db))
	if err := authSvc.EnsureAdmin(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("种入管理员失败: %v", err)
	}

	r := gin.New()
	r.POST("/api/auth/login", NewAuthController(authSvc).Login)
	protected := r.Group("/api", middleware.JWTAuth())
	protected.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "pong"})
	})
	return r
}

func doLogin(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ==================== 单元测试 ====================

func TestLogin_Success(t *testing.T) {
	r := setupAuthRouter(t)

	w := doLogin(t, r, "admin", "admin123")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			Username     string `json:"username"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.AccessToken == "" || resp.Data.RefreshToken == "" {
		t.Errorf("未签发 Token 对: %s", w.Body.String())
	}
	if resp.Data.Username != "admin" {
		t.Errorf("username = %s", resp.Data.Username)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	r := setupAuthRouter(t)

	w := doLogin(t, r, "admin", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTGuard(t *testing.T) {
	r := setupAuthRouter(t)

	// 无 Token 被拒
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("无 Token status = %d, want 401", w.Code)
	}

	// 登录拿 Access Token 再访问
	login := doLogin(t, r, "admin", "admin123")
	var resp struct {
		Data struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	json.Unmarshal(login.Body.Bytes(), &resp)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.AccessToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("有效 Token status = %d, body = %s", w.Code, w.Body.String())
	}

	// Refresh Token 不能当 Access 用
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.RefreshToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Refresh Token 直接访问 status = %d, want 401", w.Code)
	}
}
