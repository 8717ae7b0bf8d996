package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"jobmatch-backend/internal/jobs"
	"jobmatch-backend/internal/profiles"
)

// Seed is the SEED_FILE document: jobs and profiles to upsert at startup.
type Seed struct {
	Jobs     []jobs.Posting     `json:"jobs"`
	Profiles []profiles.Profile `json:"profiles"`
}

// LoadSeed reads and decodes a seed file.
func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	for i, j := range seed.Jobs {
		if j.ID == "" {
			return Seed{}, fmt.Errorf("seed %s: job %d has no id", path, i)
		}
	}
	for i, p := range seed.Profiles {
		if p.ID == "" {
			return Seed{}, fmt.Errorf("seed %s: profile %d has no id", path, i)
		}
	}
	return seed, nil
}

// Apply upserts every seeded record.
func (s Seed) Apply(ctx context.Context, jobRepo jobs.Repo, profileRepo profiles.Repo) error {
	for _, j := range s.Jobs {
		if err := jobRepo.Upsert(ctx, j); err != nil {
			return fmt.Errorf("seed job %s: %w", j.ID, err)
		}
	}
	for _, p := range s.Profiles {
		if err := profileRepo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed profile %s: %w", p.ID, err)
		}
	}
	return nil
}
