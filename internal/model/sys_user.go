package model

import (
	"time"

	"gorm.io/gorm"
)

// SysUser 系统用户
// 单机部署通常只有一个运营账号，首次启动自动种入
type SysUser struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // bcrypt 哈希
	Role     string `gorm:"size:20;default:'admin'"`
	IsActive bool   `gorm:"default:true"`
}

func (SysUser) TableName() string { return "sys_users" }
