package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ameliebruno/daybound/internal/storage"
)

// GetDay returns the progression facts for one player-day.
func (s *Store) GetDay(ctx context.Context, userID string, dayIndex int) (storage.DayRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.DayRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.DayRecord{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.DayRecord{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, day_index, storylet_ids,
		        allocation_saved, reflection_done,
		        micro_task_eligible, micro_task_done,
		        fun_pulse_eligible, fun_pulse_done,
		        boost_sent, completed, arc_moves_used
		   FROM days
		  WHERE user_id = ? AND day_index = ?`,
		userID,
		dayIndex,
	)

	var record storage.DayRecord
	var storyletIDs string
	var allocationSaved, reflectionDone int
	var microTaskEligible, microTaskDone int
	var funPulseEligible, funPulseDone int
	var boostSent, completed int
	err := row.Scan(
		&record.UserID,
		&record.DayIndex,
		&storyletIDs,
		&allocationSaved,
		&reflectionDone,
		&microTaskEligible,
		&microTaskDone,
		&funPulseEligible,
		&funPulseDone,
		&boostSent,
		&completed,
		&record.ArcMovesUsed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.DayRecord{}, storage.ErrNotFound
		}
		return storage.DayRecord{}, fmt.Errorf("get day: %w", err)
	}

	if err := json.Unmarshal([]byte(storyletIDs), &record.StoryletIDs); err != nil {
		return storage.DayRecord{}, fmt.Errorf("decode day storylet ids: %w", err)
	}
	record.AllocationSaved = allocationSaved != 0
	record.ReflectionDone = reflectionDone != 0
	record.MicroTaskEligible = microTaskEligible != 0
	record.MicroTaskDone = microTaskDone != 0
	record.FunPulseEligible = funPulseEligible != 0
	record.FunPulseDone = funPulseDone != 0
	record.BoostSent = boostSent != 0
	record.Completed = completed != 0
	return record, nil
}

// PutDay upserts the progression facts for one player-day.
func (s *Store) PutDay(ctx context.Context, record storage.DayRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return putDay(ctx, s.sqlDB, record)
}

func putDay(ctx context.Context, db dbtx, record storage.DayRecord) error {
	if strings.TrimSpace(record.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if record.DayIndex < 1 {
		return fmt.Errorf("day index must be at least 1")
	}

	ids := record.StoryletIDs
	if ids == nil {
		ids = []string{}
	}
	storyletIDs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode day storylet ids: %w", err)
	}

	_, err = db.ExecContext(
		ctx,
		`INSERT INTO days (
		   user_id, day_index, storylet_ids,
		   allocation_saved, reflection_done,
		   micro_task_eligible, micro_task_done,
		   fun_pulse_eligible, fun_pulse_done,
		   boost_sent, completed, arc_moves_used
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, day_index) DO UPDATE SET
		   storylet_ids = excluded.storylet_ids,
		   allocation_saved = excluded.allocation_saved,
		   reflection_done = excluded.reflection_done,
		   micro_task_eligible = excluded.micro_task_eligible,
		   micro_task_done = excluded.micro_task_done,
		   fun_pulse_eligible = excluded.fun_pulse_eligible,
		   fun_pulse_done = excluded.fun_pulse_done,
		   boost_sent = excluded.boost_sent,
		   completed = excluded.completed,
		   arc_moves_used = excluded.arc_moves_used`,
		record.UserID,
		record.DayIndex,
		string(storyletIDs),
		boolToInt(record.AllocationSaved),
		boolToInt(record.ReflectionDone),
		boolToInt(record.MicroTaskEligible),
		boolToInt(record.MicroTaskDone),
		boolToInt(record.FunPulseEligible),
		boolToInt(record.FunPulseDone),
		boolToInt(record.BoostSent),
		boolToInt(record.Completed),
		record.ArcMovesUsed,
	)
	if err != nil {
		return fmt.Errorf("put day: %w", err)
	}
	return nil
}
