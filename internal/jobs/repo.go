package jobs

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "job not found" }

type Repo interface {
	Upsert(ctx context.Context, posting Posting) error
	GetByID(ctx context.Context, jobID string) (Posting, error)
}
