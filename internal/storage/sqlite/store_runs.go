package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ameliebruno/daybound/internal/storage"
)

// CreateRun inserts one storylet run record.
func (s *Store) CreateRun(ctx context.Context, run storage.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return insertRun(ctx, s.sqlDB, run)
}

// RecordPlay inserts the run and writes the player state in one
// transaction, so a lost version race cannot strand a run whose deltas
// never landed.
func (s *Store) RecordPlay(ctx context.Context, run storage.RunRecord, state storage.PlayerState, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		return putPlayer(ctx, tx, state, expectedVersion)
	})
}

func insertRun(ctx context.Context, db dbtx, run storage.RunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(run.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(run.StoryletID) == "" {
		return fmt.Errorf("storylet id is required")
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(
		ctx,
		`INSERT INTO runs (
		   id, user_id, day_index, storylet_id,
		   choice_key, outcome_id, success, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.UserID,
		run.DayIndex,
		run.StoryletID,
		run.ChoiceKey,
		run.OutcomeID,
		boolToInt(run.Success),
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// ListRunsByDay returns the runs recorded for one player-day.
func (s *Store) ListRunsByDay(ctx context.Context, userID string, dayIndex int) ([]storage.RunRecord, error) {
	return s.listRuns(ctx, userID,
		`SELECT id, user_id, day_index, storylet_id,
		        choice_key, outcome_id, success, created_at
		   FROM runs
		  WHERE user_id = ? AND day_index = ?
		  ORDER BY created_at ASC, id ASC`,
		userID, dayIndex)
}

// ListRunsSince returns all runs on or after sinceDay, oldest first.
func (s *Store) ListRunsSince(ctx context.Context, userID string, sinceDay int) ([]storage.RunRecord, error) {
	return s.listRuns(ctx, userID,
		`SELECT id, user_id, day_index, storylet_id,
		        choice_key, outcome_id, success, created_at
		   FROM runs
		  WHERE user_id = ? AND day_index >= ?
		  ORDER BY day_index ASC, created_at ASC, id ASC`,
		userID, sinceDay)
}

func (s *Store) listRuns(ctx context.Context, userID, query string, args ...any) ([]storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []storage.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return records, nil
}

func scanRun(rows *sql.Rows) (storage.RunRecord, error) {
	var record storage.RunRecord
	var success int
	var createdAt int64
	if err := rows.Scan(
		&record.ID,
		&record.UserID,
		&record.DayIndex,
		&record.StoryletID,
		&record.ChoiceKey,
		&record.OutcomeID,
		&success,
		&createdAt,
	); err != nil {
		return storage.RunRecord{}, err
	}
	record.Success = success != 0
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}
