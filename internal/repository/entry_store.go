package repository

import (
	"errors"
	"sync"
	"time"

	"sourcing_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// EntryStore 提取条目仓储
// 条目只存活于进程内存，所有寻址一律用条目 ID，禁止用下标：
// 新条目头插、多个在途提取并发回写，下标随时失效
type EntryStore interface {
	Insert(entry *model.Entry)
	GetByID(id string) (*model.Entry, error)
	List() []model.Entry
	Update(id string, fn func(e *model.Entry)) error
	ToggleSelection(entryID, matchID string) error
	SelectedPairs() []SelectedPair
	PruneOlderThan(age time.Duration) int
}

// SelectedPair 一条被选中的 (条目, 候选) 组合
type SelectedPair struct {
	Entry model.Entry
	Match model.SupplierMatch
}

// ErrEntryNotFound 条目不存在
var ErrEntryNotFound = errors.New("条目不存在")

// ErrMatchNotFound 候选不存在
var ErrMatchNotFound = errors.New("候选结果不存在")

// ==================== 仓储实现 ====================

type entryStore struct {
	mu      sync.RWMutex
	order   []string // 条目 ID，最新在前
	entries map[string]*model.Entry
}

// NewEntryStore 创建内存条目仓储
func NewEntryStore() EntryStore {
	return &entryStore{
		entries: make(map[string]*model.Entry),
	}
}

// Insert 头插新条目（最新在前）
func (s *entryStore) Insert(entry *model.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := cloneEntry(entry)
	s.entries[e.ID] = e
	s.order = append([]string{e.ID}, s.order...)
}

// GetByID 按 ID 取条目快照
func (s *entryStore) GetByID(id string) (*model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return cloneEntry(e), nil
}

// List 按插入序（最新在前）返回全部条目快照
func (s *entryStore) List() []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Entry, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.entries[id]; ok {
			out = append(out, *cloneEntry(e))
		}
	}
	return out
}

// Update 按 ID 整体替换式更新
// fn 收到的是副本，改完后整体写回，读端永远看不到写一半的条目
func (s *entryStore) Update(id string, fn func(e *model.Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}

	next := cloneEntry(old)
	fn(next)
	next.ID = old.ID // 身份不可变
	s.entries[id] = next
	return nil
}

// ToggleSelection 翻转单个候选的选中标记，不触碰任何兄弟候选
func (s *entryStore) ToggleSelection(entryID, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.entries[entryID]
	if !ok {
		return ErrEntryNotFound
	}

	next := cloneEntry(old)
	for i := range next.Results {
		if next.Results[i].ID == matchID {
			next.Results[i].IsSelected = !next.Results[i].IsSelected
			s.entries[entryID] = next
			return nil
		}
	}
	return ErrMatchNotFound
}

// SelectedPairs 派生视图：条目序 x 候选序，实时从仓储重算
func (s *entryStore) SelectedPairs() []SelectedPair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pairs []SelectedPair
	for _, id := range s.order {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		for _, m := range e.Results {
			if m.IsSelected {
				pairs = append(pairs, SelectedPair{
					Entry: *cloneEntry(e),
					Match: m,
				})
			}
		}
	}
	return pairs
}

// PruneOlderThan 清理超过存活时间的条目，返回清理数量
func (s *entryStore) PruneOlderThan(age time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-age).Unix()
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		e, ok := s.entries[id]
		if ok && e.CreatedAt < cutoff {
			delete(s.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}

// ==================== 内部方法 ====================

// cloneEntry 深拷贝条目，切片逐一复制，保证快照隔离
func cloneEntry(e *model.Entry) *model.Entry {
	c := *e
	c.Results = make([]model.SupplierMatch, len(e.Results))
	copy(c.Results, e.Results)
	for i := range c.Results {
		c.Results[i].AdditionalImages = append([]string(nil), e.Results[i].AdditionalImages...)
		c.Results[i].FeatureHighlights = append([]string(nil), e.Results[i].FeatureHighlights...)
		c.Results[i].FactoryCertifications = append([]string(nil), e.Results[i].FactoryCertifications...)
	}
	c.Sources = append([]model.GroundingSource(nil), e.Sources...)
	return &c
}
