package matching

import (
	"time"

	"jobmatch-backend/internal/scoring"
)

// Source is the provenance of a MatchResult.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// MatchResult is the final, immutable result of one orchestration run.
type MatchResult struct {
	scoring.Result
	Source      Source    `json:"source"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Request asks for a match of one subject against one job.
type Request struct {
	SubjectID string
	JobID     string
	FastFirst bool
	RequestID string
}

// Outcome is the match endpoint payload. The result cache stores it whole.
type Outcome struct {
	Success     bool        `json:"success"`
	Match       MatchResult `json:"match"`
	JobTitle    string      `json:"jobTitle"`
	CompanyName string      `json:"companyName"`
	Source      Source      `json:"source"`
	Cached      bool        `json:"cached"`
	MatchID     string      `json:"matchId,omitempty"`
	TerminalLog []string    `json:"terminalLog,omitempty"`
}

// Record is a persisted MatchResult.
type Record struct {
	ID        string      `json:"id"`
	SubjectID string      `json:"subjectId"`
	JobID     string      `json:"jobId"`
	Result    MatchResult `json:"result"`
	CreatedAt time.Time   `json:"createdAt"`
}
