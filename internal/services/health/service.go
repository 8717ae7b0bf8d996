package health

import (
	"context"
	"time"

	"jobmatch-backend/internal/llm"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Sizer reports how many entries a cache holds.
type Sizer interface {
	Len() int
}

// Report is the health payload. OK is false only when storage is unreachable;
// a missing AI backend degrades matches but does not fail the probe.
type Report struct {
	OK       bool           `json:"ok"`
	Storage  string         `json:"storage"`
	AI       string         `json:"ai"`
	Caches   map[string]int `json:"caches,omitempty"`
	Duration int64          `json:"durationMs"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB     Pinger
	AI     llm.Completer
	Caches map[string]Sizer
}

// NewService constructs a health service. db may be nil for in-memory storage.
func NewService(db Pinger, ai llm.Completer, caches map[string]Sizer) *Service {
	return &Service{DB: db, AI: ai, Caches: caches}
}

// Status runs the checks.
func (s *Service) Status(ctx context.Context) Report {
	start := time.Now()
	r := Report{OK: true, Storage: "memory", AI: "not_configured"}

	if s.DB != nil {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.DB.PingContext(pctx)
		cancel()
		if err != nil {
			r.OK = false
			r.Storage = "unreachable"
		} else {
			r.Storage = "postgres"
		}
	}
	if s.AI != nil && llm.Configured(s.AI) {
		r.AI = "configured"
	}
	if len(s.Caches) > 0 {
		r.Caches = make(map[string]int, len(s.Caches))
		for name, c := range s.Caches {
			r.Caches[name] = c.Len()
		}
	}
	r.Duration = time.Since(start).Milliseconds()
	return r
}
