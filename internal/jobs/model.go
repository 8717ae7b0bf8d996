package jobs

import "time"

// Posting is the job snapshot a match is scored against. Optional text fields default to "".
type Posting struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CompanyName     string    `json:"companyName"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements"`
	Skills          string    `json:"skills"`
	ExperienceLevel string    `json:"experienceLevel,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FullText is the title, description, requirements and skills joined for keyword overlap.
func (p Posting) FullText() string {
	return p.Title + "\n" + p.Description + "\n" + p.Requirements + "\n" + p.Skills
}
