package jobs

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	postings map[string]Posting
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{postings: make(map[string]Posting)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, posting Posting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.postings[posting.ID]; ok {
		posting.CreatedAt = existing.CreatedAt
	} else if posting.CreatedAt.IsZero() {
		posting.CreatedAt = time.Now().UTC()
	}
	r.postings[posting.ID] = posting
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Posting, error) {
	if err := ctx.Err(); err != nil {
		return Posting{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	posting, ok := r.postings[jobID]
	if !ok {
		return Posting{}, ErrNotFound
	}
	return posting, nil
}
