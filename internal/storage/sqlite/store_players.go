package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ameliebruno/daybound/internal/storage"
)

// GetPlayer returns one player state record.
func (s *Store) GetPlayer(ctx context.Context, userID string) (storage.PlayerState, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlayerState{}, err
	}
	if err := s.ready(); err != nil {
		return storage.PlayerState{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.PlayerState{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, day_index,
		        energy, stress, knowledge, cash_on_hand,
		        social_leverage, physical_resilience,
		        skills, identity_vectors, version, updated_at
		   FROM players
		  WHERE user_id = ?`,
		userID,
	)

	var state storage.PlayerState
	var skillsJSON, vectorsJSON string
	var updatedAt int64
	err := row.Scan(
		&state.UserID,
		&state.DayIndex,
		&state.Snapshot.Energy,
		&state.Snapshot.Stress,
		&state.Snapshot.Knowledge,
		&state.Snapshot.CashOnHand,
		&state.Snapshot.SocialLeverage,
		&state.Snapshot.PhysicalResilience,
		&skillsJSON,
		&vectorsJSON,
		&state.Version,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PlayerState{}, storage.ErrNotFound
		}
		return storage.PlayerState{}, fmt.Errorf("get player: %w", err)
	}

	if err := json.Unmarshal([]byte(skillsJSON), &state.Skills); err != nil {
		return storage.PlayerState{}, fmt.Errorf("decode player skills: %w", err)
	}
	if err := json.Unmarshal([]byte(vectorsJSON), &state.IdentityVectors); err != nil {
		return storage.PlayerState{}, fmt.Errorf("decode player identity vectors: %w", err)
	}
	state.Snapshot = state.Snapshot.Normalize()
	state.UpdatedAt = fromMillis(updatedAt)
	return state, nil
}

// PutPlayer writes one player state record guarded by expectedVersion.
func (s *Store) PutPlayer(ctx context.Context, state storage.PlayerState, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return putPlayer(ctx, s.sqlDB, state, expectedVersion)
}

func putPlayer(ctx context.Context, db dbtx, state storage.PlayerState, expectedVersion int64) error {
	userID := strings.TrimSpace(state.UserID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	skills := state.Skills
	if skills == nil {
		skills = map[string]int{}
	}
	vectors := state.IdentityVectors
	if vectors == nil {
		vectors = map[string]int{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("encode player skills: %w", err)
	}
	vectorsJSON, err := json.Marshal(vectors)
	if err != nil {
		return fmt.Errorf("encode player identity vectors: %w", err)
	}
	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	snapshot := state.Snapshot.Normalize()

	if expectedVersion == 0 {
		_, err := db.ExecContext(
			ctx,
			`INSERT INTO players (
			   user_id, day_index,
			   energy, stress, knowledge, cash_on_hand,
			   social_leverage, physical_resilience,
			   skills, identity_vectors, version, updated_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
			userID,
			state.DayIndex,
			snapshot.Energy,
			snapshot.Stress,
			snapshot.Knowledge,
			snapshot.CashOnHand,
			snapshot.SocialLeverage,
			snapshot.PhysicalResilience,
			string(skillsJSON),
			string(vectorsJSON),
			toMillis(updatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrConflict
			}
			return fmt.Errorf("create player: %w", err)
		}
		return nil
	}

	result, err := db.ExecContext(
		ctx,
		`UPDATE players
		    SET day_index = ?,
		        energy = ?, stress = ?, knowledge = ?, cash_on_hand = ?,
		        social_leverage = ?, physical_resilience = ?,
		        skills = ?, identity_vectors = ?,
		        version = version + 1, updated_at = ?
		  WHERE user_id = ? AND version = ?`,
		state.DayIndex,
		snapshot.Energy,
		snapshot.Stress,
		snapshot.Knowledge,
		snapshot.CashOnHand,
		snapshot.SocialLeverage,
		snapshot.PhysicalResilience,
		string(skillsJSON),
		string(vectorsJSON),
		toMillis(updatedAt),
		userID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	if affected == 0 {
		return storage.ErrConflict
	}
	return nil
}
