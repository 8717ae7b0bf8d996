package jobs

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, posting Posting) error {
	const query = `
INSERT INTO job_postings (id, title, company_name, description, requirements, skills, experience_level, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  company_name = EXCLUDED.company_name,
  description = EXCLUDED.description,
  requirements = EXCLUDED.requirements,
  skills = EXCLUDED.skills,
  experience_level = EXCLUDED.experience_level`
	_, err := r.DB.ExecContext(ctx, query,
		posting.ID,
		posting.Title,
		posting.CompanyName,
		posting.Description,
		posting.Requirements,
		posting.Skills,
		nullableString(posting.ExperienceLevel),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Posting, error) {
	const query = `
SELECT id, title, company_name, description, requirements, skills, experience_level, created_at
FROM job_postings
WHERE id = $1
LIMIT 1`
	var posting Posting
	var experienceLevel sql.NullString
	err := r.DB.QueryRowContext(ctx, query, jobID).Scan(
		&posting.ID,
		&posting.Title,
		&posting.CompanyName,
		&posting.Description,
		&posting.Requirements,
		&posting.Skills,
		&experienceLevel,
		&posting.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Posting{}, ErrNotFound
		}
		return Posting{}, err
	}
	if experienceLevel.Valid {
		posting.ExperienceLevel = experienceLevel.String
	}
	return posting, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
