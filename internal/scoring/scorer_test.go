package scoring

import (
	"reflect"
	"strings"
	"testing"

	"jobmatch-backend/internal/jobs"
	"jobmatch-backend/internal/profiles"
)

func TestScoreReactNodeScenario(t *testing.T) {
	job := jobs.Posting{ID: "job-1", Skills: "React, Node.js"}
	res := Score(job, "4 years building React.js apps with Node", profiles.Profile{})

	if !containsAll(res.MatchedSkills, "react", "node") {
		t.Fatalf("expected react and node matched, got %v", res.MatchedSkills)
	}
	if res.Score <= 70 {
		t.Fatalf("expected score > 70, got %d", res.Score)
	}
	if res.Recommendation != Recommend {
		t.Fatalf("expected recommend, got %s", res.Recommendation)
	}
	if len(res.Evidence) != 1 || res.Evidence[0] != "4 years building React.js apps with Node" {
		t.Fatalf("unexpected evidence %v", res.Evidence)
	}
}

func TestScoreDeterministic(t *testing.T) {
	job := jobs.Posting{
		Title:           "Backend Engineer",
		Description:     "We build APIs in Go on Kubernetes.",
		Requirements:    "Experience with PostgreSQL and Docker; 5+ years.",
		Skills:          "Go, gRPC",
		ExperienceLevel: "5+ years",
	}
	profile := profiles.Profile{
		TechnicalSkills: []string{"Golang", "Docker"},
		Experience:      []profiles.Experience{{Company: "Acme", Technologies: []string{"postgres"}}},
		Bio:             "Engineer with 3 years of backend work.",
	}
	resume := "Skills: Go, Docker, Kafka. Built payment services. Led gRPC migration!"

	first := Score(job, resume, profile)
	for i := 0; i < 20; i++ {
		if got := Score(job, resume, profile); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
	if !reflect.DeepEqual(first.MatchedSkills, []string{"go", "grpc", "postgresql", "docker"}) {
		t.Fatalf("unexpected matched %v", first.MatchedSkills)
	}
}

func TestScoreBounds(t *testing.T) {
	tests := []struct {
		name    string
		job     jobs.Posting
		resume  string
		profile profiles.Profile
	}{
		{name: "empty everything"},
		{name: "empty resume", job: jobs.Posting{Skills: "python"}},
		{name: "no required skills", job: jobs.Posting{Title: "Chef", Description: "Cook pasta"}, resume: "I cook pasta daily."},
		{name: "overqualified", job: jobs.Posting{Skills: "go", ExperienceLevel: "1 year"}, resume: "20 years of Go. go go go.", profile: profiles.Profile{TechnicalSkills: []string{"go"}}},
		{name: "unicode", job: jobs.Posting{Skills: "Rust, Zig"}, resume: strings.Repeat("Разработчик на Rust. ", 40)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res := Score(tt.job, tt.resume, tt.profile)
			if res.Score < 0 || res.Score > 100 {
				t.Fatalf("score out of range: %d", res.Score)
			}
			if !res.Recommendation.Valid() {
				t.Fatalf("invalid recommendation %q", res.Recommendation)
			}
			if res.MatchedSkills == nil || res.MissingSkills == nil || res.Evidence == nil || res.Weaknesses == nil || res.Strengths == nil {
				t.Fatalf("expected non-nil slices, got %+v", res)
			}
			for _, e := range res.Evidence {
				if len([]rune(e)) > 160 {
					t.Fatalf("evidence too long: %d runes", len([]rune(e)))
				}
			}
		})
	}
}

func TestScoreEmptyRequiredSetContributesZero(t *testing.T) {
	_, b := ScoreWithBreakdown(jobs.Posting{Title: "Chef"}, "Skills: cooking", profiles.Profile{})
	if b.Required != 0 || b.Skill != 0 {
		t.Fatalf("expected zero skill component, got %+v", b)
	}
	if b.Experience != 50 {
		t.Fatalf("expected neutral experience, got %v", b.Experience)
	}
}

func TestRequiredSkillsInference(t *testing.T) {
	tests := []struct {
		name string
		job  jobs.Posting
		want []string
	}{
		{name: "skills field", job: jobs.Posting{Skills: "React.js, TypeScript, react"}, want: []string{"react", "typescript"}},
		{name: "requirements dictionary only", job: jobs.Posting{Requirements: "Strong Kubernetes and AWS knowledge"}, want: []string{"kubernetes", "aws"}},
		{name: "inferred from description", job: jobs.Posting{Title: "Python developer", Description: "Django and PostgreSQL shop"}, want: []string{"python", "django", "postgresql"}},
		{name: "nothing", job: jobs.Posting{Title: "Barista"}, want: []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredSkills(tt.job); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("RequiredSkills = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExperienceComponent(t *testing.T) {
	job := jobs.Posting{Skills: "go", ExperienceLevel: "4 years"}

	_, b := ScoreWithBreakdown(job, "", profiles.Profile{Bio: "2 years with Go"})
	if b.Experience != 50 {
		t.Fatalf("expected 2/4 years = 50, got %v", b.Experience)
	}
	_, b = ScoreWithBreakdown(job, "", profiles.Profile{Experience: []profiles.Experience{{Description: "10 yrs shipping"}}})
	if b.Experience != 100 {
		t.Fatalf("expected capped 100, got %v", b.Experience)
	}
}

func TestCandidateSkillsUsesFirstThreeSkillLinesAndRecentRoles(t *testing.T) {
	resume := strings.Join([]string{
		"Skills: java.",
		"Technologies: ruby.",
		"Stack: php.",
		"Skills: scala.",
	}, "\n")
	profile := profiles.Profile{Experience: []profiles.Experience{
		{Technologies: []string{"vue"}},
		{Technologies: []string{"rails"}},
		{Technologies: []string{"flask"}},
		{Technologies: []string{"laravel"}},
	}}
	got := candidateSkills(resume, profile, nil)
	for _, want := range []string{"java", "ruby", "php", "vue", "rails", "flask"} {
		if _, ok := got[want]; !ok {
			t.Fatalf("expected %q in candidate skills %v", want, got)
		}
	}
	for _, unwanted := range []string{"scala", "laravel"} {
		if _, ok := got[unwanted]; ok {
			t.Fatalf("did not expect %q in candidate skills", unwanted)
		}
	}
}

func TestEvidenceOrderAndLimit(t *testing.T) {
	long := "I wrote Go services " + strings.Repeat("that scale ", 30) + "."
	resume := "Intro line. Go is my main language. " + long + " Also Go tooling. And more Go."
	got := evidence(resume, []string{"go"})
	if len(got) != 3 {
		t.Fatalf("expected 3 evidence lines, got %v", got)
	}
	if got[0] != "Go is my main language." {
		t.Fatalf("expected original order, got %q", got[0])
	}
	if n := len([]rune(got[1])); n > 160 {
		t.Fatalf("expected truncation to 160, got %d", n)
	}
}

func TestBucket(t *testing.T) {
	tests := map[int]Recommendation{0: NotRecommended, 44: NotRecommended, 45: Consider, 75: Consider, 76: Recommend, 100: Recommend}
	for score, want := range tests {
		if got := Bucket(score); got != want {
			t.Fatalf("Bucket(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestSentences(t *testing.T) {
	got := sentences("Built Node.js APIs. Shipped fast!\nLed team? yes")
	want := []string{"Built Node.js APIs.", "Shipped fast!", "Led team?", "yes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sentences = %q, want %q", got, want)
	}
}

func TestNoResume(t *testing.T) {
	res := NoResume(jobs.Posting{Skills: "React, Node.js"})
	if res.Score != 0 || res.Recommendation != NotRecommended {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Weaknesses) != 1 || res.Weaknesses[0] != WeaknessResumeNotUploaded {
		t.Fatalf("unexpected weaknesses %v", res.Weaknesses)
	}
	if !reflect.DeepEqual(res.MissingSkills, []string{"react", "node"}) {
		t.Fatalf("unexpected missing %v", res.MissingSkills)
	}
}

func containsAll(have []string, want ...string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
