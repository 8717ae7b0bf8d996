// Package scoring computes the local, network-free match score.
//
// Score is deterministic: identical inputs always give an identical Result.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"jobmatch-backend/internal/jobs"
	"jobmatch-backend/internal/profiles"
	"jobmatch-backend/internal/textnorm"
)

const (
	skillWeight      = 0.70
	experienceWeight = 0.20
	keywordWeight    = 0.10

	neutralExperience = 50.0
	recentExperience  = 3
	maxListedMissing  = 5
)

// Breakdown carries the weighted components behind a score.
type Breakdown struct {
	Skill      float64
	Experience float64
	Keyword    float64
	Required   int
	Matched    int
	JobYears   float64
	YearsFound float64
}

// Score compares resumeText and profile against job. It never fails; empty
// inputs simply contribute nothing.
func Score(job jobs.Posting, resumeText string, profile profiles.Profile) Result {
	res, _ := ScoreWithBreakdown(job, resumeText, profile)
	return res
}

// ScoreWithBreakdown is Score plus the per-component values.
func ScoreWithBreakdown(job jobs.Posting, resumeText string, profile profiles.Profile) (Result, Breakdown) {
	required := RequiredSkills(job)
	candidate := candidateSkills(resumeText, profile, required)

	var b Breakdown
	b.Required = len(required)

	matched := make([]string, 0, len(required))
	missing := make([]string, 0, len(required))
	for _, skill := range required {
		if _, ok := candidate[skill]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	b.Matched = len(matched)
	if len(required) > 0 {
		b.Skill = float64(len(matched)) / float64(len(required)) * 100
	}

	b.JobYears = years(job.ExperienceLevel)
	b.YearsFound = years(candidateYearsText(resumeText, profile)...)
	b.Experience = neutralExperience
	if b.JobYears > 0 {
		b.Experience = math.Min(100, b.YearsFound/b.JobYears*100)
	}

	b.Keyword = keywordOverlap(job.FullText(), resumeText)

	total := b.Skill*skillWeight + b.Experience*experienceWeight + b.Keyword*keywordWeight
	score := int(math.Round(math.Max(0, math.Min(100, total))))
	bucket := Bucket(score)

	return Result{
		Score:          score,
		MatchedSkills:  matched,
		MissingSkills:  missing,
		Strengths:      strengths(b),
		Weaknesses:     weaknesses(b, missing, resumeText),
		Summary:        rationale(bucket, b),
		Recommendation: bucket,
		Evidence:       evidence(resumeText, matched),
	}, b
}

// RequiredSkills is the ordered required-skill set of job. The skills field
// contributes every keyword; requirements contribute dictionary terms. When
// both are empty, skills are inferred from title and description.
func RequiredSkills(job jobs.Posting) []string {
	set := newOrderedSet()
	for _, k := range textnorm.Keywords(job.Skills) {
		set.add(k)
	}
	for _, k := range textnorm.Keywords(job.Requirements) {
		if IsTechKeyword(k) {
			set.add(k)
		}
	}
	if set.len() == 0 {
		for _, k := range textnorm.Keywords(job.Title + "\n" + job.Description) {
			if IsTechKeyword(k) {
				set.add(k)
			}
		}
	}
	return set.items
}

// candidateSkills unions skill-line tokens from the resume, the profile's
// skill fields, technologies of the most recent roles, and any required skill
// mentioned anywhere in the resume.
func candidateSkills(resumeText string, profile profiles.Profile, required []string) map[string]struct{} {
	out := make(map[string]struct{})
	add := func(s string) {
		for _, k := range textnorm.Keywords(s) {
			out[k] = struct{}{}
		}
	}

	lines := 0
	for _, sentence := range sentences(resumeText) {
		if lines == maxSkillLines {
			break
		}
		if containsMarker(sentence) {
			add(sentence)
			lines++
		}
	}
	for _, skill := range profile.Skills() {
		add(skill)
	}
	for _, exp := range profile.Recent(recentExperience) {
		for _, tech := range exp.Technologies {
			add(tech)
		}
	}

	if len(required) > 0 && resumeText != "" {
		resumeTokens := make(map[string]struct{})
		for _, t := range textnorm.Tokens(resumeText) {
			resumeTokens[t] = struct{}{}
		}
		for _, skill := range required {
			if _, ok := resumeTokens[skill]; ok {
				out[skill] = struct{}{}
			}
		}
	}
	return out
}

func candidateYearsText(resumeText string, profile profiles.Profile) []string {
	texts := make([]string, 0, len(profile.Experience)+2)
	texts = append(texts, profile.Bio)
	for _, exp := range profile.Experience {
		texts = append(texts, exp.Description)
	}
	return append(texts, resumeText)
}

// keywordOverlap is the share of job keywords that also appear in the resume, 0..100.
func keywordOverlap(jobText, resumeText string) float64 {
	jobKeywords := textnorm.Keywords(jobText)
	if len(jobKeywords) == 0 {
		return 0
	}
	resume := textnorm.Set(resumeText)
	if len(resume) == 0 {
		return 0
	}
	hits := 0
	for _, k := range jobKeywords {
		if _, ok := resume[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(jobKeywords)) * 100
}

// evidence returns up to three resume sentences, in order, that name a matched skill.
func evidence(resumeText string, matched []string) []string {
	out := []string{}
	if len(matched) == 0 {
		return out
	}
	want := make(map[string]struct{}, len(matched))
	for _, m := range matched {
		want[m] = struct{}{}
	}
	for _, sentence := range sentences(resumeText) {
		if len(out) == maxEvidence {
			break
		}
		for _, t := range textnorm.Tokens(sentence) {
			if _, ok := want[t]; ok {
				out = append(out, truncateRunes(sentence, maxEvidenceRunes))
				break
			}
		}
	}
	return out
}

func rationale(bucket Recommendation, b Breakdown) string {
	switch bucket {
	case Recommend:
		return fmt.Sprintf("Strong match: the candidate covers %d of %d required skills and the experience lines up with the role.", b.Matched, b.Required)
	case Consider:
		return fmt.Sprintf("Partial match: the candidate covers %d of %d required skills; review the gaps before moving forward.", b.Matched, b.Required)
	default:
		return fmt.Sprintf("Weak match: the candidate covers %d of %d required skills for this role.", b.Matched, b.Required)
	}
}

func strengths(b Breakdown) []string {
	out := []string{}
	if b.Required > 0 && b.Matched > 0 {
		out = append(out, fmt.Sprintf("Matches %d of %d required skills", b.Matched, b.Required))
	}
	if b.JobYears > 0 && b.YearsFound >= b.JobYears {
		out = append(out, fmt.Sprintf("Meets the %s-year experience requirement", formatYears(b.JobYears)))
	}
	if b.Keyword >= 50 {
		out = append(out, "Resume vocabulary closely follows the job description")
	}
	return out
}

func weaknesses(b Breakdown, missing []string, resumeText string) []string {
	out := []string{}
	if len(missing) > 0 {
		listed := missing
		if len(listed) > maxListedMissing {
			listed = listed[:maxListedMissing]
		}
		out = append(out, "Missing skills: "+strings.Join(listed, ", "))
	}
	if b.JobYears > 0 && b.YearsFound < b.JobYears {
		out = append(out, fmt.Sprintf("Experience below requirement (%s of %s years)", formatYears(b.YearsFound), formatYears(b.JobYears)))
	}
	if strings.TrimSpace(resumeText) == "" {
		out = append(out, "No resume text available as evidence")
	}
	return out
}

func formatYears(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) len() int { return len(s.items) }
