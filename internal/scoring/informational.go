package scoring

import "jobmatch-backend/internal/jobs"

const (
	WeaknessResumeNotUploaded = "Resume not uploaded"
	WeaknessJobNotFound       = "Job posting not found"
	WeaknessProfileNotFound   = "Candidate profile not found"
)

// NoResume is the zero-score result for a profile that never uploaded a resume.
// Every required skill of job is listed as missing.
func NoResume(job jobs.Posting) Result {
	return Result{
		Score:          0,
		MatchedSkills:  []string{},
		MissingSkills:  RequiredSkills(job),
		Strengths:      []string{},
		Weaknesses:     []string{WeaknessResumeNotUploaded},
		Summary:        "No resume on file. Upload a resume to get a match score for this job.",
		Recommendation: NotRecommended,
		Evidence:       []string{},
	}
}

// Informational is a zero-score result explaining why no comparison was possible.
func Informational(summary, weakness string) Result {
	return Result{
		Score:          0,
		MatchedSkills:  []string{},
		MissingSkills:  []string{},
		Strengths:      []string{},
		Weaknesses:     []string{weakness},
		Summary:        summary,
		Recommendation: NotRecommended,
		Evidence:       []string{},
	}
}
