package llm

import (
	_ "embed"
	"strings"
	"text/template"
)

const (
	maxResumeRunes     = 12000
	maxResumeRunesFast = 6000
)

//go:embed prompts/match.tmpl
var matchPromptText string

var matchPrompt = template.Must(template.New("match").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(matchPromptText))

// MatchPromptInput is the job and candidate snapshot rendered into the match prompt.
type MatchPromptInput struct {
	JobTitle        string
	Company         string
	Description     string
	Requirements    string
	Skills          string
	ExperienceLevel string

	CandidateSkills []string
	Experience      []string
	Bio             string
	ResumeText      string

	// Fast trims the resume harder so the provider answers sooner.
	Fast bool
}

// BuildMatchPrompt renders the match prompt.
func BuildMatchPrompt(in MatchPromptInput) (string, error) {
	limit := maxResumeRunes
	if in.Fast {
		limit = maxResumeRunesFast
	}
	in.ResumeText = truncateRunes(strings.TrimSpace(in.ResumeText), limit)

	var b strings.Builder
	if err := matchPrompt.Execute(&b, in); err != nil {
		return "", err
	}
	return b.String(), nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
