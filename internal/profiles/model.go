package profiles

import (
	"time"

	"jobmatch-backend/internal/locator"
)

// Profile is the candidate snapshot. ID is the subject id the match endpoint authorizes against.
type Profile struct {
	ID              string       `json:"id"`
	TechnicalSkills []string     `json:"technicalSkills"`
	SoftSkills      []string     `json:"softSkills"`
	Languages       []string     `json:"languages"`
	Experience      []Experience `json:"experience"`
	Bio             string       `json:"bio"`
	ResumeURL       string       `json:"resumeUrl,omitempty"`
	ResumeStorageID string       `json:"resumeStorageId,omitempty"`
	LegacyResumeURL string       `json:"legacyResumeUrl,omitempty"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Experience entries are stored newest first.
type Experience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description,omitempty"`
}

// Resume returns the locator reference for the profile's resume.
func (p Profile) Resume() locator.Reference {
	return locator.Reference{
		ProfileURL: p.ResumeURL,
		LegacyURL:  p.LegacyResumeURL,
		StorageID:  p.ResumeStorageID,
	}
}

// Skills returns technical, soft and language skills in that order.
func (p Profile) Skills() []string {
	out := make([]string, 0, len(p.TechnicalSkills)+len(p.SoftSkills)+len(p.Languages))
	out = append(out, p.TechnicalSkills...)
	out = append(out, p.SoftSkills...)
	out = append(out, p.Languages...)
	return out
}

// Recent returns at most n experience entries from the front of the list.
func (p Profile) Recent(n int) []Experience {
	if n >= len(p.Experience) {
		return p.Experience
	}
	return p.Experience[:n]
}
