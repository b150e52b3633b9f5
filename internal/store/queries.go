package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/feed"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded feed build.
type Run struct {
	ID        int64     `json:"id"`
	Geo       string    `json:"geo"`
	Source    string    `json:"source"`
	PostCount int       `json:"post_count"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveRun records a scored feed and its posts, returning the run id.
func (s *Store) SaveRun(ctx context.Context, source string, result *feed.FeedResult) (int64, error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (geo, source, post_count) VALUES (?, ?, ?)",
		result.Geo, source, len(result.Posts))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, p := range result.Posts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_posts
				(run_id, post_id, username, image_url, caption, likes, risk_score, ai_image_probability, flag)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.ID, p.Username, p.ImageURL, p.Caption, p.Likes,
			p.RiskScore, p.AIImageProbability, p.Flag)
		if err != nil {
			return 0, fmt.Errorf("insert post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}

	return runID, nil
}

// RecentRuns returns the newest runs first, up to limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.QueryContext(ctx, `
		SELECT id, geo, source, post_count, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Geo, &r.Source, &r.PostCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// RunPosts returns the scored posts recorded for a run, in insertion
// order.
func (s *Store) RunPosts(ctx context.Context, runID int64) ([]feed.Post, error) {
	var exists int
	err := s.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.QueryContext(ctx, `
		SELECT post_id, username, image_url, caption, likes, risk_score, ai_image_probability, flag
		FROM run_posts
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []feed.Post
	for rows.Next() {
		var p feed.Post
		if err := rows.Scan(&p.ID, &p.Username, &p.ImageURL, &p.Caption, &p.Likes,
			&p.RiskScore, &p.AIImageProbability, &p.Flag); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}
