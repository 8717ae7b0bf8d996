package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobmatch-backend/internal/bootstrap"
	"jobmatch-backend/internal/cache"
	"jobmatch-backend/internal/jobs"
	"jobmatch-backend/internal/llm"
	"jobmatch-backend/internal/locator"
	"jobmatch-backend/internal/matching"
	"jobmatch-backend/internal/profiles"
	"jobmatch-backend/internal/shared/config"
)

func newScoreCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a profile file against a job file",
		Long: `Loads a job posting and a candidate profile from JSON files and runs one match.
A resumeUrl that is a plain file path is read from disk. The AI backend is used
when LLM_API_KEY (or OPENROUTER_API_KEY, OPENAI_API_KEY) is set and --no-ai is not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, v)
		},
	}
	flags := cmd.Flags()
	flags.StringP("job", "j", "", "path to the job posting JSON")
	flags.StringP("profile", "p", "", "path to the candidate profile JSON")
	flags.Bool("fast", false, "use the fast-first AI budget")
	flags.Bool("no-ai", false, "skip the AI backend and use the deterministic score")
	flags.Bool("json", false, "print the raw match payload as JSON")
	for _, name := range []string{"job", "profile", "fast", "no-ai", "json"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func runScore(cmd *cobra.Command, v *viper.Viper) error {
	jobPath, profilePath := v.GetString("job"), v.GetString("profile")
	if jobPath == "" || profilePath == "" {
		return fmt.Errorf("--job and --profile are required")
	}

	var posting jobs.Posting
	if err := readJSON(jobPath, &posting); err != nil {
		return fmt.Errorf("read job: %w", err)
	}
	var profile profiles.Profile
	if err := readJSON(profilePath, &profile); err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	if posting.ID == "" {
		posting.ID = strings.TrimSuffix(filepath.Base(jobPath), filepath.Ext(jobPath))
	}
	if profile.ID == "" {
		profile.ID = strings.TrimSuffix(filepath.Base(profilePath), filepath.Ext(profilePath))
	}
	profile.ResumeURL = fileURL(profile.ResumeURL, filepath.Dir(profilePath))

	cfg := config.Load()
	svc, err := newLocalService(cmd, cfg, posting, profile, v.GetBool("no-ai"))
	if err != nil {
		return err
	}

	out, err := svc.Match(cmd.Context(), matching.Request{
		SubjectID: profile.ID,
		JobID:     posting.ID,
		FastFirst: v.GetBool("fast"),
	})
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printOutcome(cmd, out)
	return nil
}

func newLocalService(cmd *cobra.Command, cfg config.Config, posting jobs.Posting, profile profiles.Profile, noAI bool) (*matching.Service, error) {
	ctx := cmd.Context()
	jobRepo := jobs.NewMemoryRepo()
	if err := jobRepo.Upsert(ctx, posting); err != nil {
		return nil, err
	}
	profileRepo := profiles.NewMemoryRepo()
	if err := profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	var ai llm.Completer = llm.NotConfigured{}
	if !noAI {
		ai = bootstrap.BuildCompleter(cfg)
	}

	return &matching.Service{
		Jobs:        jobRepo,
		Profiles:    profileRepo,
		Results:     matching.NewMemoryRepo(),
		Locator:     locator.New(locator.NewFileFetcher("/", cfg.ResumeFetchTimeout), nil, locator.Options{FetchTimeout: cfg.ResumeFetchTimeout}),
		AI:          ai,
		ResultCache: cache.New[string, matching.Outcome](),
		TextCache:   cache.New[string, string](),
		Config:      bootstrap.MatchConfig(cfg),
	}, nil
}

func printOutcome(cmd *cobra.Command, out matching.Outcome) {
	w := cmd.OutOrStdout()
	m := out.Match
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s @ %s", out.JobTitle, out.CompanyName)))
	fmt.Fprintln(w, field("Score", strconv.Itoa(m.Score)))
	fmt.Fprintln(w, field("Recommendation", string(m.Recommendation)))
	fmt.Fprintln(w, field("Source", string(out.Source)))
	fmt.Fprintln(w, field("Matched", joinOrDash(m.MatchedSkills)))
	fmt.Fprintln(w, field("Missing", joinOrDash(m.MissingSkills)))
	fmt.Fprintln(w, field("Summary", m.Summary))
	if len(m.Evidence) > 0 {
		fmt.Fprintln(w, field("Evidence", strings.Join(m.Evidence, " | ")))
	}
	fmt.Fprintln(w)
	for _, line := range out.TerminalLog {
		fmt.Fprintln(w, styleTraceLine(line))
	}
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// fileURL turns a bare resume path into a file:// URL, resolving it
// against base when relative. URLs with a scheme pass through.
func fileURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return raw
	}
	if !filepath.IsAbs(raw) {
		raw = filepath.Join(base, raw)
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return raw
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
