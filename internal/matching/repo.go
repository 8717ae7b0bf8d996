package matching

import "context"

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListFilter narrows a history listing. An empty JobID lists every job.
type ListFilter struct {
	JobID  string
	Limit  int
	Offset int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Repo is the append-only result log.
type Repo interface {
	Create(ctx context.Context, record Record) error
	ListBySubject(ctx context.Context, subjectID string, filter ListFilter) ([]Record, error)
}
