package store

import (
	"context"
	"sort"
	"sync"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
)

// MemoryStore 内存运行记录存储
//
// 基于 map 的实现，进程退出后数据丢失，适用于测试和单次 CLI 调用。
type MemoryStore struct {
	runs map[string]Run
	mu   sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]Run)}
}

// Save 插入或更新运行记录
func (s *MemoryStore) Save(_ context.Context, run Run) error {
	if run.ID == "" {
		return ErrInvalidRun
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = cloneRun(run)
	return nil
}

// Get 获取运行记录
func (s *MemoryStore) Get(_ context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, errors.ErrRunNotFound
	}
	return cloneRun(run), nil
}

// List 按创建时间倒序列出运行记录
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Run, error) {
	s.mu.RLock()
	results := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		if filter.matches(run) {
			results = append(results, cloneRun(run))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID > results[j].ID
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Close 关闭（空操作）
func (s *MemoryStore) Close() error {
	return nil
}

func (f Filter) matches(run Run) bool {
	if f.Task != "" && run.Task != f.Task {
		return false
	}
	if f.Status != "" && run.Status != f.Status {
		return false
	}
	if f.ParentID != "" && run.ParentID != f.ParentID {
		return false
	}
	return true
}

func cloneRun(run Run) Run {
	run.Input = append([]byte(nil), run.Input...)
	run.Output = append([]byte(nil), run.Output...)
	return run
}

var _ Store = (*MemoryStore)(nil)
