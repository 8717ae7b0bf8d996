package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, profile Profile) error {
	const query = `
INSERT INTO candidate_profiles (id, technical_skills, soft_skills, languages, experience, bio, resume_url, resume_storage_id, legacy_resume_url, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (id) DO UPDATE SET
  technical_skills = EXCLUDED.technical_skills,
  soft_skills = EXCLUDED.soft_skills,
  languages = EXCLUDED.languages,
  experience = EXCLUDED.experience,
  bio = EXCLUDED.bio,
  resume_url = EXCLUDED.resume_url,
  resume_storage_id = EXCLUDED.resume_storage_id,
  legacy_resume_url = EXCLUDED.legacy_resume_url,
  updated_at = now()`

	encoded := make([][]byte, 0, 4)
	for _, v := range []any{nonNil(profile.TechnicalSkills), nonNil(profile.SoftSkills), nonNil(profile.Languages), nonNilExperience(profile.Experience)} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		encoded = append(encoded, raw)
	}

	_, err := r.DB.ExecContext(ctx, query,
		profile.ID,
		encoded[0],
		encoded[1],
		encoded[2],
		encoded[3],
		profile.Bio,
		nullableString(profile.ResumeURL),
		nullableString(profile.ResumeStorageID),
		nullableString(profile.LegacyResumeURL),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, subjectID string) (Profile, error) {
	const query = `
SELECT id, technical_skills, soft_skills, languages, experience, bio, resume_url, resume_storage_id, legacy_resume_url, updated_at
FROM candidate_profiles
WHERE id = $1
LIMIT 1`
	var profile Profile
	var technical, soft, languages, experience []byte
	var resumeURL, storageID, legacyURL sql.NullString
	err := r.DB.QueryRowContext(ctx, query, subjectID).Scan(
		&profile.ID,
		&technical,
		&soft,
		&languages,
		&experience,
		&profile.Bio,
		&resumeURL,
		&storageID,
		&legacyURL,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}

	for _, field := range []struct {
		raw  []byte
		dest any
	}{
		{technical, &profile.TechnicalSkills},
		{soft, &profile.SoftSkills},
		{languages, &profile.Languages},
		{experience, &profile.Experience},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return Profile{}, fmt.Errorf("decode profile %s: %w", subjectID, err)
		}
	}
	profile.ResumeURL = resumeURL.String
	profile.ResumeStorageID = storageID.String
	profile.LegacyResumeURL = legacyURL.String
	return profile, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilExperience(values []Experience) []Experience {
	if values == nil {
		return []Experience{}
	}
	return values
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
