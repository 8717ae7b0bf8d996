package matching

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, record Record) error {
	const query = `
INSERT INTO match_results (id, subject_id, job_id, score, recommendation, source, result, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("encode match result: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.SubjectID,
		record.JobID,
		record.Result.Score,
		string(record.Result.Recommendation),
		string(record.Result.Source),
		payload,
		record.CreatedAt,
	)
	return err
}

func (r *PGRepo) ListBySubject(ctx context.Context, subjectID string, filter ListFilter) ([]Record, error) {
	const query = `
SELECT id, subject_id, job_id, result, created_at
FROM match_results
WHERE subject_id = $1 AND ($2::text = '' OR job_id = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`
	filter = filter.normalized()
	rows, err := r.DB.QueryContext(ctx, query, subjectID, filter.JobID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.SubjectID, &rec.JobID, &payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &rec.Result); err != nil {
			return nil, fmt.Errorf("decode match result %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
