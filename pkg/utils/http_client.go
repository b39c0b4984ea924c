package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewSyncClient 创建目标市场同步用的 Resty 客户端
// 全系统出站同步请求统一从这里拿客户端
func NewSyncClient() *resty.Client {
	return resty.New().
		SetTimeout(30 * time.Second). // 图片列表可能很长，给足余量
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Sourcing-Terminal/1.0")
}
