package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ameliebruno/daybound/internal/arc"
	"github.com/ameliebruno/daybound/internal/storage"
)

// CreateOffer inserts one arc offer record.
func (s *Store) CreateOffer(ctx context.Context, offer arc.Offer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(offer.ID) == "" {
		return fmt.Errorf("offer id is required")
	}
	if strings.TrimSpace(offer.UserID) == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO arc_offers (
		   id, user_id, arc_key, offer_key, state,
		   times_shown, tone_level,
		   first_seen_day, last_seen_day, expires_on_day
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID,
		offer.UserID,
		offer.ArcKey,
		offer.OfferKey,
		int(offer.State),
		offer.TimesShown,
		offer.ToneLevel,
		offer.FirstSeenDay,
		offer.LastSeenDay,
		offer.ExpiresOnDay,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

// GetOffer returns one offer by ID.
func (s *Store) GetOffer(ctx context.Context, offerID string) (arc.Offer, error) {
	if err := ctx.Err(); err != nil {
		return arc.Offer{}, err
	}
	if err := s.ready(); err != nil {
		return arc.Offer{}, err
	}
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return arc.Offer{}, fmt.Errorf("offer id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, user_id, arc_key, offer_key, state,
		        times_shown, tone_level,
		        first_seen_day, last_seen_day, expires_on_day
		   FROM arc_offers
		  WHERE id = ?`,
		offerID,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return arc.Offer{}, storage.ErrNotFound
		}
		return arc.Offer{}, fmt.Errorf("get offer: %w", err)
	}
	return offer, nil
}

// HasOffer reports whether any offer exists for the (user, arc) pair.
func (s *Store) HasOffer(ctx context.Context, userID, arcKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	if strings.TrimSpace(userID) == "" {
		return false, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(arcKey) == "" {
		return false, fmt.Errorf("arc key is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM arc_offers WHERE user_id = ? AND arc_key = ? LIMIT 1`,
		userID,
		arcKey,
	)
	var found int
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check offer: %w", err)
	}
	return true, nil
}

// ListOpenOffers returns a user's ACTIVE offers, oldest first.
func (s *Store) ListOpenOffers(ctx context.Context, userID string) ([]arc.Offer, error) {
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
		`SELECT id, user_id, arc_key, offer_key, state,
		        times_shown, tone_level,
		        first_seen_day, last_seen_day, expires_on_day
		   FROM arc_offers
		  WHERE user_id = ? AND state = ?
		  ORDER BY first_seen_day ASC, id ASC`,
		userID,
		int(arc.OfferStateActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list open offers: %w", err)
	}
	defer rows.Close()

	var offers []arc.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("list open offers: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open offers: %w", err)
	}
	return offers, nil
}

// UpdateOffer writes an offer when its stored state still matches expected.
func (s *Store) UpdateOffer(ctx context.Context, offer arc.Offer, expected arc.OfferState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(offer.ID) == "" {
		return fmt.Errorf("offer id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE arc_offers
		    SET state = ?, times_shown = ?, tone_level = ?,
		        last_seen_day = ?, expires_on_day = ?
		  WHERE id = ? AND state = ?`,
		int(offer.State),
		offer.TimesShown,
		offer.ToneLevel,
		offer.LastSeenDay,
		offer.ExpiresOnDay,
		offer.ID,
		int(expected),
	)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if affected == 0 {
		return storage.ErrConflict
	}
	return nil
}

// CreateInstance inserts one arc instance record.
func (s *Store) CreateInstance(ctx context.Context, instance arc.Instance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(instance.ID) == "" {
		return fmt.Errorf("instance id is required")
	}
	if strings.TrimSpace(instance.UserID) == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO arc_instances (
		   id, user_id, arc_key, state, current_step_key,
		   step_due_day, step_defer_count,
		   started_day, updated_day, completed_day, failure_reason
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		instance.ID,
		instance.UserID,
		instance.ArcKey,
		int(instance.State),
		instance.CurrentStepKey,
		instance.StepDueDay,
		instance.StepDeferCount,
		instance.StartedDay,
		instance.UpdatedDay,
		nullableInt(instance.CompletedDay),
		instance.FailureReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create instance: %w", err)
	}
	return nil
}

// GetInstance returns one instance by ID.
func (s *Store) GetInstance(ctx context.Context, instanceID string) (arc.Instance, error) {
	if err := ctx.Err(); err != nil {
		return arc.Instance{}, err
	}
	if err := s.ready(); err != nil {
		return arc.Instance{}, err
	}
	instanceID = strings.TrimSpace(instanceID)
	if instanceID == "" {
		return arc.Instance{}, fmt.Errorf("instance id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, user_id, arc_key, state, current_step_key,
		        step_due_day, step_defer_count,
		        started_day, updated_day, completed_day, failure_reason
		   FROM arc_instances
		  WHERE id = ?`,
		instanceID,
	)
	instance, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return arc.Instance{}, storage.ErrNotFound
		}
		return arc.Instance{}, fmt.Errorf("get instance: %w", err)
	}
	return instance, nil
}

// ListActiveInstances returns a user's ACTIVE instances, oldest first.
func (s *Store) ListActiveInstances(ctx context.Context, userID string) ([]arc.Instance, error) {
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
		`SELECT id, user_id, arc_key, state, current_step_key,
		        step_due_day, step_defer_count,
		        started_day, updated_day, completed_day, failure_reason
		   FROM arc_instances
		  WHERE user_id = ? AND state = ?
		  ORDER BY started_day ASC, id ASC`,
		userID,
		int(arc.InstanceStateActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list active instances: %w", err)
	}
	defer rows.Close()

	var instances []arc.Instance
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("list active instances: %w", err)
		}
		instances = append(instances, instance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active instances: %w", err)
	}
	return instances, nil
}

// UpdateInstance writes an instance when its stored state still matches expected.
func (s *Store) UpdateInstance(ctx context.Context, instance arc.Instance, expected arc.InstanceState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return updateInstance(ctx, s.sqlDB, instance, expected)
}

// RecordArcAdvance writes the advanced instance, the player state, and
// the day record in one transaction. A stale instance state or player
// version rolls everything back, so the step cost, the slot, and the
// step transition move together or not at all.
func (s *Store) RecordArcAdvance(ctx context.Context, instance arc.Instance, expectedState arc.InstanceState, state storage.PlayerState, expectedVersion int64, record storage.DayRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateInstance(ctx, tx, instance, expectedState); err != nil {
			return err
		}
		if err := putPlayer(ctx, tx, state, expectedVersion); err != nil {
			return err
		}
		return putDay(ctx, tx, record)
	})
}

func updateInstance(ctx context.Context, db dbtx, instance arc.Instance, expected arc.InstanceState) error {
	if strings.TrimSpace(instance.ID) == "" {
		return fmt.Errorf("instance id is required")
	}

	result, err := db.ExecContext(
		ctx,
		`UPDATE arc_instances
		    SET state = ?, current_step_key = ?,
		        step_due_day = ?, step_defer_count = ?,
		        updated_day = ?, completed_day = ?, failure_reason = ?
		  WHERE id = ? AND state = ?`,
		int(instance.State),
		instance.CurrentStepKey,
		instance.StepDueDay,
		instance.StepDeferCount,
		instance.UpdatedDay,
		nullableInt(instance.CompletedDay),
		instance.FailureReason,
		instance.ID,
		int(expected),
	)
	if err != nil {
		return fmt.Errorf("update instance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update instance: %w", err)
	}
	if affected == 0 {
		return storage.ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (arc.Offer, error) {
	var offer arc.Offer
	var state int
	if err := row.Scan(
		&offer.ID,
		&offer.UserID,
		&offer.ArcKey,
		&offer.OfferKey,
		&state,
		&offer.TimesShown,
		&offer.ToneLevel,
		&offer.FirstSeenDay,
		&offer.LastSeenDay,
		&offer.ExpiresOnDay,
	); err != nil {
		return arc.Offer{}, err
	}
	offer.State = arc.OfferState(state)
	return offer, nil
}

func scanInstance(row rowScanner) (arc.Instance, error) {
	var instance arc.Instance
	var state int
	var completedDay sql.NullInt64
	if err := row.Scan(
		&instance.ID,
		&instance.UserID,
		&instance.ArcKey,
		&state,
		&instance.CurrentStepKey,
		&instance.StepDueDay,
		&instance.StepDeferCount,
		&instance.StartedDay,
		&instance.UpdatedDay,
		&completedDay,
		&instance.FailureReason,
	); err != nil {
		return arc.Instance{}, err
	}
	instance.State = arc.InstanceState(state)
	if completedDay.Valid {
		day := int(completedDay.Int64)
		instance.CompletedDay = &day
	}
	return instance, nil
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
