package flagstore

import (
	"context"
	"sync"
	"time"
)

type MemFlagStore struct {
	mu   sync.Mutex
	data []FlaggedPost
	next uint
}

var _ FlagStore = (*MemFlagStore)(nil)

func NewMemFlagStore() *MemFlagStore {
	return &MemFlagStore{}
}

func (s *MemFlagStore) Add(ctx context.Context, rec *FlaggedPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	cp := *rec
	cp.ID = s.next
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.data = append(s.data, cp)
	return nil
}

func (s *MemFlagStore) Recent(ctx context.Context, limit int) ([]FlaggedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.data) {
		limit = len(s.data)
	}
	out := make([]FlaggedPost, 0, limit)
	for i := len(s.data) - 1; i >= len(s.data)-limit; i-- {
		out = append(out, s.data[i])
	}
	return out, nil
}
