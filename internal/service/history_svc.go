package service

import (
	"context"

	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
)

// HistoryQuery 导出历史只读查询
// 写入只发生在导出编排里，这里不暴露任何修改入口
type HistoryQuery struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryQuery 创建历史查询服务
func NewHistoryQuery(historyRepo repository.HistoryRepository) *HistoryQuery {
	return &HistoryQuery{historyRepo: historyRepo}
}

// List 全部历史，最新在前
func (s *HistoryQuery) List(ctx context.Context) ([]model.ExportRecord, error) {
	return s.historyRepo.List(ctx)
}

// Get 单条历史快照
func (s *HistoryQuery) Get(ctx context.Context, id string) (*model.ExportRecord, error) {
	return s.historyRepo.GetByID(ctx, id)
}
