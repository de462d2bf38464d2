// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

// Package catalog reads movies, clips and ads from DuckDB.
//
// Production deployments open the catalog read-only; the catalog is
// maintained by the content pipeline. EnsureSchema and Seed exist for
// development bootstraps and tests.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/config"
	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
	"github.com/tomtom215/reelgate/internal/models"
)

// MemoryPath opens a private in-memory catalog.
const MemoryPath = ":memory:"

// Store implements access.MovieStore and access.AdStore.
type Store struct {
	conn         *sql.DB
	queryTimeout time.Duration
}

var (
	_ access.MovieStore = (*Store)(nil)
	_ access.AdStore    = (*Store)(nil)
)

// Open connects to the catalog described by cfg.
func Open(cfg *config.CatalogConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}

	if path != MemoryPath && !cfg.ReadOnly {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create catalog directory %s: %w", dir, err)
			}
		}
	}

	mode := "read_write"
	if cfg.ReadOnly && path != MemoryPath {
		mode = "read_only"
	}
	connStr := fmt.Sprintf("%s?access_mode=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, mode)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	s := &Store{conn: conn, queryTimeout: cfg.QueryTimeout}
	if err := s.Ping(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	logging.Info().
		Str("path", path).
		Str("access_mode", mode).
		Msg("Catalog opened")
	return s, nil
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping checks the connection. It backs the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.conn.PingContext(ctx)
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// ByID returns the movie with its clips ordered by sequence. A missing movie
// returns an error wrapping access.ErrMovieNotFound.
func (s *Store) ByID(ctx context.Context, id int64) (movie *models.Movie, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("movie_by_id", time.Since(start), ignoreNotFound(err))
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	movie = &models.Movie{}
	err = s.conn.QueryRowContext(ctx,
		`SELECT id, title, enabled FROM movies WHERE id = ?`, id,
	).Scan(&movie.ID, &movie.Title, &movie.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", access.ErrMovieNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query movie %d: %w", id, err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, seq, duration_ms FROM clips WHERE movie_id = ? ORDER BY seq, id`, id)
	if err != nil {
		return nil, fmt.Errorf("query clips for movie %d: %w", id, err)
	}
	defer rows.Close()

	movie.Clips = []models.Clip{}
	for rows.Next() {
		var (
			clip       models.Clip
			durationMS int64
		)
		if err := rows.Scan(&clip.ID, &clip.Sequence, &durationMS); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clip.Duration = time.Duration(durationMS) * time.Millisecond
		movie.Clips = append(movie.Clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return movie, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, access.ErrMovieNotFound) {
		return nil
	}
	return err
}

// AllAds returns every ad with its clip. An ad whose clip row is missing is
// still returned, with zero sequence and duration, so the caller sees it when
// resolving the clip. An empty pool returns nil.
func (s *Store) AllAds(ctx context.Context) (ads []models.Ad, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("all_ads", time.Since(start), err)
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT a.id, a.clip_id, COALESCE(c.seq, 0), COALESCE(c.duration_ms, 0)
		FROM ads a
		LEFT JOIN clips c ON c.id = a.clip_id
		ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("query ads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ad         models.Ad
			durationMS int64
		)
		if err := rows.Scan(&ad.ID, &ad.Clip.ID, &ad.Clip.Sequence, &durationMS); err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		ad.Clip.Duration = time.Duration(durationMS) * time.Millisecond
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ads: %w", err)
	}
	return ads, nil
}
