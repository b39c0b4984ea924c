package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
)

// ==================== 服务实现 ====================

// ExtractService 提取编排服务
// 每个条目一次派发一个独立 goroutine，互不阻塞、互不排序；
// 回写一律按条目 ID 寻址。在途调用没有取消机制：
// 重触发一个 processing 条目后，旧调用晚到仍会按 ID 写回，可能覆盖新结果
type ExtractService struct {
	store   repository.EntryStore
	gateway SourcingGateway
}

// NewExtractService 创建提取编排服务
func NewExtractService(store repository.EntryStore, gateway SourcingGateway) *ExtractService {
	return &ExtractService{
		store:   store,
		gateway: gateway,
	}
}

// ==================== 条目创建 ====================

// SubmitImage 上传图片创建条目
// 初始 idle，等用户在详情页手动触发提取
func (s *ExtractService) SubmitImage(fileName, base64Image string) string {
	entry := &model.Entry{
		ID:            uuid.NewString(),
		FileName:      fileName,
		OriginalImage: base64Image,
		Status:        model.EntryStatusIdle,
		Results:       []model.SupplierMatch{},
		Sources:       []model.GroundingSource{},
		CreatedAt:     time.Now().Unix(),
	}
	s.store.Insert(entry)
	return entry.ID
}

// SubmitKeywords 批量关键词创建条目
// 逗号分隔，每段一个条目，立即各自独立派发
func (s *ExtractService) SubmitKeywords(raw string) []string {
	var ids []string
	for _, seg := range strings.Split(raw, ",") {
		keyword := strings.TrimSpace(seg)
		if keyword == "" {
			continue
		}

		entry := &model.Entry{
			ID:               uuid.NewString(),
			FileName:         keyword,
			SourcingKeywords: keyword,
			Status:           model.EntryStatusProcessing,
			Results:          []model.SupplierMatch{},
			Sources:          []model.GroundingSource{},
			CreatedAt:        time.Now().Unix(),
		}
		s.store.Insert(entry)
		ids = append(ids, entry.ID)

		go s.dispatch(entry.ID)
	}
	return ids
}

// ==================== 触发与重试 ====================

// Trigger 触发或重试一个非 processing 条目
// 清掉上次的报错与结果，置 processing 后派发
func (s *ExtractService) Trigger(id string) error {
	entry, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if entry.Status == model.EntryStatusProcessing {
		return fmt.Errorf("条目正在提取中")
	}

	if err := s.store.Update(id, func(e *model.Entry) {
		e.Status = model.EntryStatusProcessing
		e.Error = ""
		e.Results = []model.SupplierMatch{}
		e.Sources = []model.GroundingSource{}
	}); err != nil {
		return err
	}

	go s.dispatch(id)
	return nil
}

// ==================== 异步派发 ====================

// dispatch 执行一次网关调用并按 ID 回写
func (s *ExtractService) dispatch(id string) {
	ctx := context.Background()

	entry, err := s.store.GetByID(id)
	if err != nil {
		log.Printf("[提取] 条目 %s 已不存在，跳过派发", id)
		return
	}

	var result *SourcingResult
	if entry.Mode() == model.EntryModeImage {
		result, err = s.gateway.ProcessProductImage(ctx, entry.OriginalImage, "")
	} else {
		result, err = s.gateway.ProcessProductKeyword(ctx, entry.SourcingKeywords)
	}

	if err != nil {
		// 失败信息原样落在条目上，不自动重试
		s.store.Update(id, func(e *model.Entry) {
			e.Status = model.EntryStatusError
			e.Error = err.Error()
		})
		log.Printf("[提取] 条目 %s 提取失败: %v", id, err)
		return
	}

	s.store.Update(id, func(e *model.Entry) {
		e.Status = model.EntryStatusCompleted
		e.Error = ""
		e.Results = result.Matches
		e.Sources = result.Sources
		e.SourcingKeywords = result.Keywords
	})
	log.Printf("[提取] 条目 %s 提取完成，候选 %d 条", id, len(result.Matches))
}

// ==================== 查询与选择 ====================

// ListEntries 全部条目，最新在前
func (s *ExtractService) ListEntries() []model.Entry {
	return s.store.List()
}

// GetEntry 单个条目
func (s *ExtractService) GetEntry(id string) (*model.Entry, error) {
	return s.store.GetByID(id)
}

// ToggleSelection 翻转单个候选的选中标记
func (s *ExtractService) ToggleSelection(entryID, matchID string) error {
	return s.store.ToggleSelection(entryID, matchID)
}

// SelectedPairs 当前选中的 (条目, 候选) 组合，条目序 x 候选序
func (s *ExtractService) SelectedPairs() []repository.SelectedPair {
	return s.store.SelectedPairs()
}
