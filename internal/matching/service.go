package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobmatch-backend/internal/cache"
	"jobmatch-backend/internal/extract"
	"jobmatch-backend/internal/jobs"
	"jobmatch-backend/internal/llm"
	"jobmatch-backend/internal/locator"
	"jobmatch-backend/internal/profiles"
	"jobmatch-backend/internal/scoring"
	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/telemetry"
	"jobmatch-backend/internal/tracelog"
)

const (
	StageCacheCheck      = "CACHE_CHECK"
	StageResolveProfile  = "RESOLVE_PROFILE"
	StageLocateResume    = "LOCATE_RESUME"
	StageExtractText     = "EXTRACT_TEXT"
	StageComputeFallback = "COMPUTE_FALLBACK"
	StageRaceAI          = "RACE_AI"
	StageSelectResult    = "SELECT_RESULT"
	StagePersist         = "PERSIST"
	StageCacheWrite      = "CACHE_WRITE"
	StageRespond         = "RESPOND"
)

const (
	winnerAI      = "ai"
	winnerTimer   = "timer"
	winnerSkipped = "skipped"
	winnerAborted = "aborted"
)

// Locator finds and downloads a candidate's resume.
type Locator interface {
	Resolve(ctx context.Context, ref locator.Reference) (locator.Resolution, error)
}

// Config holds the orchestrator's time budgets and cache lifetimes.
type Config struct {
	Budget         time.Duration
	FastBudget     time.Duration
	Grace          time.Duration
	AITTL          time.Duration
	FallbackTTL    time.Duration
	TextTTL        time.Duration
	PersistTimeout time.Duration
}

// DefaultConfig returns the production budgets.
func DefaultConfig() Config {
	return Config{
		Budget:         22 * time.Second,
		FastBudget:     18 * time.Second,
		Grace:          2 * time.Second,
		AITTL:          5 * time.Minute,
		FallbackTTL:    2 * time.Minute,
		TextTTL:        10 * time.Minute,
		PersistTimeout: 5 * time.Second,
	}
}

// Service runs the match pipeline. Jobs and Profiles are required; every
// other dependency is optional and its stage is skipped when nil.
type Service struct {
	Jobs        jobs.Repo
	Profiles    profiles.Repo
	Results     Repo
	Locator     Locator
	AI          llm.Completer
	ResultCache *cache.Cache[string, Outcome]
	TextCache   *cache.Cache[string, string]
	Config      Config

	Now   func() time.Time
	NewID func() string
}

// CacheKey is the result cache key for a subject/job pair.
func CacheKey(subjectID, jobID string) string {
	return subjectID + ":" + jobID
}

// Match answers one match request. The only error it returns wraps
// ErrValidation; every other failure degrades to a usable result.
func (s *Service) Match(ctx context.Context, req Request) (Outcome, error) {
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	req.JobID = strings.TrimSpace(req.JobID)
	if req.SubjectID == "" {
		return Outcome{}, &ValidationError{Field: "subjectId", Issue: "is required"}
	}
	if req.JobID == "" {
		return Outcome{}, &ValidationError{Field: "jobId", Issue: "is required"}
	}

	metrics.IncMatchRequests()
	started := time.Now()
	defer func() {
		metrics.ObserveMatchDurationMs(float64(time.Since(started).Milliseconds()))
	}()

	r := &run{req: req, mark: started}
	key := CacheKey(req.SubjectID, req.JobID)

	if s.ResultCache != nil {
		if cached, ok := s.ResultCache.Get(key); ok {
			r.step(StageCacheCheck, tracelog.StatusOK, "hit")
			metrics.IncMatchCacheHits()
			cached.Cached = true
			return cached, nil
		}
	}
	r.step(StageCacheCheck, tracelog.StatusOK, "miss")

	job, profile, informational := s.resolve(ctx, r)
	if informational != nil {
		r.step(StageRespond, tracelog.StatusOK, "informational")
		metrics.IncMatchSource(string(SourceFallback))
		return s.outcome(key, r, job, MatchResult{Result: *informational, Source: SourceFallback, EvaluatedAt: s.now()}, ""), nil
	}

	var (
		result MatchResult
		ref    = profile.Resume()
	)
	if ref.Empty() {
		r.step(StageLocateResume, tracelog.StatusSkipped, "no resume reference")
		r.step(StageExtractText, tracelog.StatusSkipped, "no resume reference")
		r.step(StageComputeFallback, tracelog.StatusOK, "no resume")
		r.step(StageRaceAI, tracelog.StatusSkipped, "no resume")
		r.race(winnerSkipped)
		result = MatchResult{Result: scoring.NoResume(job), Source: SourceFallback}
		r.step(StageSelectResult, tracelog.StatusOK, "source=fallback")
	} else {
		text := s.resumeText(ctx, r, ref)
		fallback := scoring.Score(job, text, profile)
		r.step(StageComputeFallback, tracelog.StatusOK, fmt.Sprintf("score=%d", fallback.Score))
		result = s.selectResult(ctx, r, job, profile, text, fallback)
	}
	result.EvaluatedAt = s.now()
	metrics.IncMatchSource(string(result.Source))

	matchID := s.persist(ctx, r, result)

	ttl := s.Config.FallbackTTL
	if result.Source == SourceAI {
		ttl = s.Config.AITTL
	}
	if s.ResultCache != nil {
		r.step(StageCacheWrite, tracelog.StatusOK, "ttl="+ttl.String())
	} else {
		r.step(StageCacheWrite, tracelog.StatusSkipped, "no cache")
	}
	r.step(StageRespond, tracelog.StatusOK, "source="+string(result.Source))

	out := s.outcome(key, r, job, result, matchID)
	if s.ResultCache != nil {
		s.ResultCache.Set(key, out, ttl)
	}
	return out, nil
}

// resolve loads the job and profile snapshots. A miss returns the
// informational result to answer with.
func (s *Service) resolve(ctx context.Context, r *run) (jobs.Posting, profiles.Profile, *scoring.Result) {
	job, err := s.Jobs.GetByID(ctx, r.req.JobID)
	if err != nil {
		r.fail(StageResolveProfile, "job lookup failed", err)
		res := scoring.Informational("The job posting could not be found, so no match was computed.", scoring.WeaknessJobNotFound)
		return jobs.Posting{}, profiles.Profile{}, &res
	}
	profile, err := s.Profiles.GetByID(ctx, r.req.SubjectID)
	if err != nil {
		r.fail(StageResolveProfile, "profile lookup failed", err)
		res := scoring.Informational("No candidate profile was found. Complete your profile to get a match score.", scoring.WeaknessProfileNotFound)
		return job, profiles.Profile{}, &res
	}
	r.step(StageResolveProfile, tracelog.StatusOK, "job and profile loaded")
	return job, profile, nil
}

// resumeText returns the extracted resume text, or "" when it cannot be had.
func (s *Service) resumeText(ctx context.Context, r *run, ref locator.Reference) string {
	key := textCacheKey(ref)
	if s.TextCache != nil && key != "" {
		if text, ok := s.TextCache.Get(key); ok {
			r.step(StageLocateResume, tracelog.StatusSkipped, "text cache hit")
			r.step(StageExtractText, tracelog.StatusSkipped, "text cache hit")
			return text
		}
	}

	if s.Locator == nil {
		r.step(StageLocateResume, tracelog.StatusSkipped, "no locator")
		r.step(StageExtractText, tracelog.StatusSkipped, "no resume")
		return ""
	}
	res, err := s.Locator.Resolve(ctx, ref)
	if err != nil {
		r.fail(StageLocateResume, locatorDetail(err), err)
		r.step(StageExtractText, tracelog.StatusSkipped, "no resume")
		return ""
	}
	r.step(StageLocateResume, tracelog.StatusOK, res.Reason)

	doc, err := extract.FromBytes(ctx, res.Data, res.URL)
	if err != nil {
		r.fail(StageExtractText, "extract failed", err)
		return ""
	}
	if !doc.Supported {
		r.step(StageExtractText, tracelog.StatusWarn, "unsupported format "+doc.Format)
		return ""
	}
	if s.TextCache != nil {
		s.TextCache.Set(res.SourceURL, doc.Text, s.Config.TextTTL)
	}
	r.step(StageExtractText, tracelog.StatusOK, fmt.Sprintf("%d pages", doc.Pages))
	return doc.Text
}

// selectResult races the AI call against the budget and picks the result to answer with.
func (s *Service) selectResult(ctx context.Context, r *run, job jobs.Posting, profile profiles.Profile, text string, fallback scoring.Result) MatchResult {
	useFallback := func(detail string) MatchResult {
		r.step(StageSelectResult, tracelog.StatusOK, strings.TrimSpace("source=fallback "+detail))
		return MatchResult{Result: fallback, Source: SourceFallback}
	}

	if !llm.Configured(s.AI) {
		r.step(StageRaceAI, tracelog.StatusSkipped, "ai not configured")
		r.race(winnerSkipped)
		return useFallback("")
	}

	prompt, err := llm.BuildMatchPrompt(promptInput(job, profile, text, r.req.FastFirst))
	if err != nil {
		r.fail(StageRaceAI, "prompt build failed", err)
		r.race(winnerSkipped)
		return useFallback("")
	}

	budget := s.Config.Budget
	if r.req.FastFirst {
		budget = s.Config.FastBudget
	}
	budget += s.Config.Grace

	reply, winner, err := s.raceAI(ctx, prompt, budget)
	r.race(winner)
	switch {
	case winner == winnerTimer:
		r.step(StageRaceAI, tracelog.StatusWarn, "budget "+budget.String()+" exceeded")
		return useFallback("timeout")
	case err != nil:
		r.fail(StageRaceAI, "ai call failed", err)
		return useFallback(string(llm.KindOf(err)))
	}
	r.step(StageRaceAI, tracelog.StatusOK, "ai replied")

	parsed, recovered, err := ParseAIReply(reply)
	if err != nil {
		telemetry.Warn("match.ai.unparseable", r.fields(map[string]any{"err": err}))
		return useFallback("unparseable")
	}
	detail := "source=ai"
	if recovered {
		parsed.MatchedSkills = fallback.MatchedSkills
		parsed.MissingSkills = fallback.MissingSkills
		detail += " recovered"
	}
	r.step(StageSelectResult, tracelog.StatusOK, detail)
	return MatchResult{Result: parsed, Source: SourceAI}
}

type aiReply struct {
	text string
	err  error
}

// raceAI runs the AI call on its own goroutine and waits for it or the budget,
// whichever comes first. The call does not inherit ctx cancellation, and a
// late reply lands in the buffered channel and is dropped.
func (s *Service) raceAI(ctx context.Context, prompt string, budget time.Duration) (string, string, error) {
	done := make(chan aiReply, 1)
	aiCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- aiReply{err: &llm.UpstreamError{Kind: llm.KindTransport, Message: fmt.Sprintf("ai call panicked: %v", rec)}}
			}
		}()
		text, err := s.AI.Complete(aiCtx, prompt)
		done <- aiReply{text: text, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case reply := <-done:
		return reply.text, winnerAI, reply.err
	case <-timer.C:
		return "", winnerTimer, nil
	case <-ctx.Done():
		return "", winnerAborted, ctx.Err()
	}
}

// persist writes the result log entry and returns its id, or "" on failure.
func (s *Service) persist(ctx context.Context, r *run, result MatchResult) string {
	if s.Results == nil {
		r.step(StagePersist, tracelog.StatusSkipped, "no result store")
		return ""
	}
	record := Record{
		ID:        s.newID(),
		SubjectID: r.req.SubjectID,
		JobID:     r.req.JobID,
		Result:    result,
		CreatedAt: result.EvaluatedAt,
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout())
	defer cancel()
	if err := s.Results.Create(persistCtx, record); err != nil {
		metrics.IncMatchPersistFailed()
		telemetry.Error("match.persist.failed", r.fields(map[string]any{"err": err, "match_id": record.ID}))
		r.step(StagePersist, tracelog.StatusWarn, "persist failed")
		return ""
	}
	r.step(StagePersist, tracelog.StatusOK, "match_id="+record.ID)
	return record.ID
}

func (s *Service) outcome(key string, r *run, job jobs.Posting, result MatchResult, matchID string) Outcome {
	return Outcome{
		Success:     true,
		Match:       result,
		JobTitle:    job.Title,
		CompanyName: job.CompanyName,
		Source:      result.Source,
		MatchID:     matchID,
		TerminalLog: tracelog.Render(tracelog.Generate(key, r.steps)),
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) persistTimeout() time.Duration {
	if s.Config.PersistTimeout > 0 {
		return s.Config.PersistTimeout
	}
	return DefaultConfig().PersistTimeout
}

// textCacheKey mirrors locator.Resolution.SourceURL so lookups can happen before resolving.
func textCacheKey(ref locator.Reference) string {
	if u := locator.ChooseURL(ref); u != "" {
		return u
	}
	if id := strings.TrimSpace(ref.StorageID); id != "" {
		return "object:" + id
	}
	return ""
}

func locatorDetail(err error) string {
	var (
		notFound *locator.NoResumeFoundError
		direct   *locator.DirectFetchError
	)
	switch {
	case errors.As(err, &notFound):
		return "no resume found: " + notFound.Reason
	case errors.As(err, &direct) && direct.Status != 0:
		return fmt.Sprintf("direct fetch failed: status %d", direct.Status)
	default:
		return "direct fetch failed"
	}
}

func promptInput(job jobs.Posting, profile profiles.Profile, text string, fast bool) llm.MatchPromptInput {
	recent := profile.Recent(3)
	experience := make([]string, 0, len(recent))
	for _, e := range recent {
		line := strings.TrimSpace(e.Position + " at " + e.Company)
		if len(e.Technologies) > 0 {
			line += " (" + strings.Join(e.Technologies, ", ") + ")"
		}
		if d := strings.TrimSpace(e.Description); d != "" {
			line += ": " + d
		}
		experience = append(experience, line)
	}
	return llm.MatchPromptInput{
		JobTitle:        job.Title,
		Company:         job.CompanyName,
		Description:     job.Description,
		Requirements:    job.Requirements,
		Skills:          job.Skills,
		ExperienceLevel: job.ExperienceLevel,
		CandidateSkills: profile.Skills(),
		Experience:      experience,
		Bio:             profile.Bio,
		ResumeText:      text,
		Fast:            fast,
	}
}

// run records the stages of one Match call.
type run struct {
	req   Request
	steps []tracelog.Step
	mark  time.Time
}

func (r *run) fields(extra map[string]any) map[string]any {
	out := map[string]any{
		"request_id": r.req.RequestID,
		"subject_id": r.req.SubjectID,
		"job_id":     r.req.JobID,
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (r *run) step(name string, status tracelog.Status, detail string) {
	now := time.Now()
	telemetry.Info("match.stage", r.fields(map[string]any{
		"stage":       name,
		"status":      string(status),
		"detail":      detail,
		"duration_ms": now.Sub(r.mark).Milliseconds(),
	}))
	r.mark = now
	r.steps = append(r.steps, tracelog.Step{Name: name, Status: status, Detail: detail})
}

func (r *run) fail(name, detail string, err error) {
	telemetry.Warn("match.degraded", r.fields(map[string]any{"stage": name, "err": err}))
	r.step(name, tracelog.StatusWarn, detail)
}

func (r *run) race(winner string) {
	telemetry.Info("match.race", r.fields(map[string]any{"winner": winner}))
}
