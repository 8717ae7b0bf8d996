package matching

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *MemoryRepo) ListBySubject(ctx context.Context, subjectID string, filter ListFilter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter = filter.normalized()

	r.mu.RLock()
	matched := make([]Record, 0)
	for _, rec := range r.records {
		if rec.SubjectID != subjectID {
			continue
		}
		if filter.JobID != "" && rec.JobID != filter.JobID {
			continue
		}
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Offset >= len(matched) {
		return []Record{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}
