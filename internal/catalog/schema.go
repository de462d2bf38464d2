// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package catalog

import (
	"context"
	"fmt"

	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/models"
)

// Ad clips are stored with a NULL movie_id.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT PRIMARY KEY,
		title VARCHAR NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS clips (
		id BIGINT PRIMARY KEY,
		movie_id BIGINT,
		seq INTEGER NOT NULL DEFAULT 0,
		duration_ms BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clips_movie ON clips (movie_id, seq)`,
	`CREATE TABLE IF NOT EXISTS ads (
		id BIGINT PRIMARY KEY,
		clip_id BIGINT NOT NULL
	)`,
}

// EnsureSchema creates the catalog tables if they do not exist. It fails on
// a read-only catalog.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create catalog schema: %w", err)
		}
	}
	logging.Debug().Msg("Catalog schema ensured")
	return nil
}

// Seed upserts movies with their clips and ads in one transaction. An ad
// clip is only inserted when no clip with that id exists, so an ad reusing a
// movie clip leaves the movie's clip list intact.
func (s *Store) Seed(ctx context.Context, movies []models.Movie, ads []models.Ad) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range movies {
		m := &movies[i]
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO movies (id, title, enabled) VALUES (?, ?, ?)`,
			m.ID, m.Title, m.Enabled); err != nil {
			return fmt.Errorf("seed movie %d: %w", m.ID, err)
		}
		for _, c := range m.Clips {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO clips (id, movie_id, seq, duration_ms) VALUES (?, ?, ?, ?)`,
				c.ID, m.ID, c.Sequence, c.Duration.Milliseconds()); err != nil {
				return fmt.Errorf("seed clip %d: %w", c.ID, err)
			}
		}
	}

	for _, a := range ads {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO clips (id, movie_id, seq, duration_ms) VALUES (?, NULL, ?, ?)`,
			a.Clip.ID, a.Clip.Sequence, a.Clip.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("seed ad clip %d: %w", a.Clip.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO ads (id, clip_id) VALUES (?, ?)`,
			a.ID, a.Clip.ID); err != nil {
			return fmt.Errorf("seed ad %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	logging.Info().
		Int("movies", len(movies)).
		Int("ads", len(ads)).
		Msg("Catalog seeded")
	return nil
}
