package scoring

// Recommendation is the three-way bucket derived from a score.
type Recommendation string

const (
	Recommend      Recommendation = "recommend"
	Consider       Recommendation = "consider"
	NotRecommended Recommendation = "not_recommended"
)

// Valid reports whether r is one of the known buckets.
func (r Recommendation) Valid() bool {
	switch r {
	case Recommend, Consider, NotRecommended:
		return true
	default:
		return false
	}
}

// Bucket maps a 0-100 score to its recommendation: >75 recommend, 45..75 consider.
func Bucket(score int) Recommendation {
	switch {
	case score > 75:
		return Recommend
	case score >= 45:
		return Consider
	default:
		return NotRecommended
	}
}

// Result is a scored comparison of one candidate against one job.
type Result struct {
	Score          int            `json:"score"`
	MatchedSkills  []string       `json:"matchedSkills"`
	MissingSkills  []string       `json:"missingSkills"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	Summary        string         `json:"summary"`
	Recommendation Recommendation `json:"recommendation"`
	Evidence       []string       `json:"evidence"`
}

// Clamp bounds a score to [0, 100].
func Clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
