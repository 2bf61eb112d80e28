package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ameliebruno/daybound/internal/alignment"
	"github.com/ameliebruno/daybound/internal/storage"
)

// GetScore returns the running total for one (user, faction) pair. A
// pair with no recorded deltas yields a zero-valued score.
func (s *Store) GetScore(ctx context.Context, userID, factionKey string) (alignment.Score, error) {
	if err := ctx.Err(); err != nil {
		return alignment.Score{}, err
	}
	if err := s.ready(); err != nil {
		return alignment.Score{}, err
	}
	userID = strings.TrimSpace(userID)
	factionKey = strings.TrimSpace(factionKey)
	if userID == "" {
		return alignment.Score{}, fmt.Errorf("user id is required")
	}
	if factionKey == "" {
		return alignment.Score{}, fmt.Errorf("faction key is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT value FROM alignment_scores WHERE user_id = ? AND faction_key = ?`,
		userID,
		factionKey,
	)
	score := alignment.Score{UserID: userID, FactionKey: factionKey}
	if err := row.Scan(&score.Value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return score, nil
		}
		return alignment.Score{}, fmt.Errorf("get alignment score: %w", err)
	}
	return score, nil
}

// ListScores returns all faction scores for one user.
func (s *Store) ListScores(ctx context.Context, userID string) ([]alignment.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT user_id, faction_key, value
		   FROM alignment_scores
		  WHERE user_id = ?
		  ORDER BY faction_key ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list alignment scores: %w", err)
	}
	defer rows.Close()

	var scores []alignment.Score
	for rows.Next() {
		var score alignment.Score
		if err := rows.Scan(&score.UserID, &score.FactionKey, &score.Value); err != nil {
			return nil, fmt.Errorf("list alignment scores: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alignment scores: %w", err)
	}
	return scores, nil
}

// PutScore upserts one faction score.
func (s *Store) PutScore(ctx context.Context, score alignment.Score) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(score.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(score.FactionKey) == "" {
		return fmt.Errorf("faction key is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO alignment_scores (user_id, faction_key, value)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, faction_key) DO UPDATE SET value = excluded.value`,
		score.UserID,
		score.FactionKey,
		score.Value,
	)
	if err != nil {
		return fmt.Errorf("put alignment score: %w", err)
	}
	return nil
}

// AppendEvent appends one ledger entry.
func (s *Store) AppendEvent(ctx context.Context, event alignment.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(event.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(event.FactionKey) == "" {
		return fmt.Errorf("faction key is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO alignment_events (
		   user_id, day_index, faction_key, delta, source, source_ref, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.UserID,
		event.DayIndex,
		event.FactionKey,
		event.Delta,
		event.Source,
		event.SourceRef,
		toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append alignment event: %w", err)
	}
	return nil
}

// HasEvent reports whether a (user, source, sourceRef) entry exists.
func (s *Store) HasEvent(ctx context.Context, userID, source, sourceRef string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	if strings.TrimSpace(userID) == "" {
		return false, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM alignment_events
		  WHERE user_id = ? AND source = ? AND source_ref = ?`,
		userID,
		source,
		sourceRef,
	)
	var found int
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check alignment event: %w", err)
	}
	return true, nil
}

// TodayPositiveSum returns the sum of positive deltas recorded for the
// faction on the given day.
func (s *Store) TodayPositiveSum(ctx context.Context, userID, factionKey string, dayIndex int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(factionKey) == "" {
		return 0, fmt.Errorf("faction key is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COALESCE(SUM(delta), 0)
		   FROM alignment_events
		  WHERE user_id = ? AND faction_key = ? AND day_index = ? AND delta > 0`,
		userID,
		factionKey,
		dayIndex,
	)
	var sum int
	if err := row.Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum alignment gains: %w", err)
	}
	return sum, nil
}
