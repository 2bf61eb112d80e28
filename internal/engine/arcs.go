package engine

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ameliebruno/daybound/internal/arc"
	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/resources"
	"github.com/ameliebruno/daybound/internal/storage"
)

// ShowArcOffers returns the arc offers open for the player today. Lapsed
// offers expire lazily on the way out, never-offered arcs without an
// active instance produce fresh offers, and every returned offer has its
// display recorded, escalating tone.
func (e *Engine) ShowArcOffers(ctx context.Context, userID string, dayIndex int) ([]arc.Offer, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ShowArcOffers", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("day.index", dayIndex),
	))
	defer span.End()

	if err := validateUserDay(userID, dayIndex); err != nil {
		return nil, err
	}

	open, err := e.arcs.ListOpenOffers(ctx, userID)
	if err != nil {
		return nil, err
	}

	surviving := make([]arc.Offer, 0, len(open))
	offered := make(map[string]bool)
	for _, offer := range open {
		if offer.ShouldExpire(dayIndex) {
			expired, err := offer.Expire()
			if err != nil {
				return nil, err
			}
			if err := e.arcs.UpdateOffer(ctx, expired, arc.OfferStateActive); err != nil {
				return nil, storeErr(err, "offer")
			}
			continue
		}
		surviving = append(surviving, offer)
		offered[offer.ArcKey] = true
	}

	active, err := e.arcs.ListActiveInstances(ctx, userID)
	if err != nil {
		return nil, err
	}
	running := make(map[string]bool, len(active))
	for _, instance := range active {
		running[instance.ArcKey] = true
	}

	defs, err := e.content.ListArcDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if offered[def.Key] || running[def.Key] {
			continue
		}
		has, err := e.arcs.HasOffer(ctx, userID, def.Key)
		if err != nil {
			return nil, err
		}
		if has {
			// The arc was offered before and resolved; it does not come back.
			continue
		}
		offerID, err := e.newID()
		if err != nil {
			return nil, err
		}
		offer := arc.NewOffer(offerID, userID, def, dayIndex)
		if err := e.arcs.CreateOffer(ctx, offer); err != nil {
			return nil, storeErr(err, "offer")
		}
		surviving = append(surviving, offer)
	}

	shown := make([]arc.Offer, 0, len(surviving))
	for _, offer := range surviving {
		next, err := offer.RecordShown(dayIndex)
		if err != nil {
			return nil, err
		}
		if next.TimesShown != offer.TimesShown {
			if err := e.arcs.UpdateOffer(ctx, next, arc.OfferStateActive); err != nil {
				return nil, storeErr(err, "offer")
			}
		}
		shown = append(shown, next)
	}
	return shown, nil
}

// ActiveArcs returns the player's running arc instances.
func (e *Engine) ActiveArcs(ctx context.Context, userID string) ([]arc.Instance, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ActiveArcs", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	if userID == "" {
		return nil, apperrors.New(apperrors.CodeUserIDEmpty, "user id is required")
	}
	return e.arcs.ListActiveInstances(ctx, userID)
}

// FirstOption returns the key of the first option on the instance's
// current step.
func (e *Engine) FirstOption(ctx context.Context, instance arc.Instance) (string, error) {
	def, err := e.content.GetArcDefinition(ctx, instance.ArcKey)
	if err != nil {
		return "", storeErr(err, "arc definition")
	}
	step, err := def.StepByKey(instance.CurrentStepKey)
	if err != nil {
		return "", err
	}
	if len(step.Options) == 0 {
		return "", apperrors.WithMetadata(
			apperrors.CodeArcUnknownOption,
			"step has no options",
			map[string]string{"StepKey": step.Key},
		)
	}
	return step.Options[0].Key, nil
}

// AcceptOffer converts an open offer into a running arc instance.
func (e *Engine) AcceptOffer(ctx context.Context, userID, offerID string, dayIndex int) (arc.Offer, arc.Instance, error) {
	ctx, span := e.tracer.Start(ctx, "engine.AcceptOffer", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("offer.id", offerID),
	))
	defer span.End()

	offer, err := e.arcs.GetOffer(ctx, offerID)
	if err != nil {
		return arc.Offer{}, arc.Instance{}, storeErr(err, "offer")
	}
	if offer.UserID != userID {
		return arc.Offer{}, arc.Instance{}, apperrors.New(apperrors.CodeNotFound, "offer not found")
	}
	def, err := e.content.GetArcDefinition(ctx, offer.ArcKey)
	if err != nil {
		return arc.Offer{}, arc.Instance{}, storeErr(err, "arc definition")
	}

	instanceID, err := e.newID()
	if err != nil {
		return arc.Offer{}, arc.Instance{}, err
	}
	accepted, instance, err := offer.Accept(instanceID, def, dayIndex)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeOfferExpired) {
			if expired, expireErr := offer.Expire(); expireErr == nil {
				_ = e.arcs.UpdateOffer(ctx, expired, arc.OfferStateActive)
			}
		}
		return arc.Offer{}, arc.Instance{}, err
	}

	if err := e.arcs.CreateInstance(ctx, instance); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return arc.Offer{}, arc.Instance{}, apperrors.WithMetadata(
				apperrors.CodeArcAlreadyActive,
				"an instance of this arc is already active",
				map[string]string{"Arc": offer.ArcKey},
			)
		}
		return arc.Offer{}, arc.Instance{}, err
	}
	if err := e.arcs.UpdateOffer(ctx, accepted, arc.OfferStateActive); err != nil {
		return arc.Offer{}, arc.Instance{}, storeErr(err, "offer")
	}
	return accepted, instance, nil
}

// DismissOffer declines an open offer.
func (e *Engine) DismissOffer(ctx context.Context, userID, offerID string) (arc.Offer, error) {
	ctx, span := e.tracer.Start(ctx, "engine.DismissOffer", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("offer.id", offerID),
	))
	defer span.End()

	offer, err := e.arcs.GetOffer(ctx, offerID)
	if err != nil {
		return arc.Offer{}, storeErr(err, "offer")
	}
	if offer.UserID != userID {
		return arc.Offer{}, apperrors.New(apperrors.CodeNotFound, "offer not found")
	}
	dismissed, err := offer.Dismiss()
	if err != nil {
		return arc.Offer{}, err
	}
	if err := e.arcs.UpdateOffer(ctx, dismissed, arc.OfferStateActive); err != nil {
		return arc.Offer{}, storeErr(err, "offer")
	}
	return dismissed, nil
}

// AdvanceResult reports one resolved arc step.
type AdvanceResult struct {
	Instance   arc.Instance
	Resolution arc.StepResolution
	Snapshot   resources.Snapshot
}

// AdvanceArc resolves the current step of a running arc with the chosen
// option. Advances consume one of the day's arc slots; an exhausted cap
// rejects the move with a typed error before any state changes.
func (e *Engine) AdvanceArc(ctx context.Context, userID, instanceID, optionKey string, dayIndex int) (AdvanceResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.AdvanceArc", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("instance.id", instanceID),
		attribute.Int("day.index", dayIndex),
	))
	defer span.End()

	if err := validateUserDay(userID, dayIndex); err != nil {
		return AdvanceResult{}, err
	}

	record, err := e.days.GetDay(ctx, userID, dayIndex)
	if err != nil {
		return AdvanceResult{}, storeErr(err, "day")
	}
	if err := arc.CanProgressToday(record.ArcMovesUsed, e.arcSlots, 0); err != nil {
		return AdvanceResult{}, err
	}

	instance, err := e.arcs.GetInstance(ctx, instanceID)
	if err != nil {
		return AdvanceResult{}, storeErr(err, "arc instance")
	}
	if instance.UserID != userID {
		return AdvanceResult{}, apperrors.New(apperrors.CodeNotFound, "arc instance not found")
	}
	def, err := e.content.GetArcDefinition(ctx, instance.ArcKey)
	if err != nil {
		return AdvanceResult{}, storeErr(err, "arc definition")
	}
	player, err := e.players.GetPlayer(ctx, userID)
	if err != nil {
		return AdvanceResult{}, storeErr(err, "player")
	}

	next, resolution, err := instance.ResolveStep(def, optionKey, player.Snapshot, player.Skills, dayIndex)
	if err != nil {
		return AdvanceResult{}, err
	}

	player.Snapshot = resolution.Snapshot
	if len(resolution.IdentityTags) > 0 {
		if player.IdentityVectors == nil {
			player.IdentityVectors = map[string]int{}
		}
		for _, tag := range resolution.IdentityTags {
			player.IdentityVectors[tag]++
		}
	}
	player.UpdatedAt = e.now().UTC()
	record.ArcMovesUsed++

	// Step transition, step cost, and the consumed slot land in one
	// atomic write; a conflict on any of them rolls all three back.
	if err := e.arcs.RecordArcAdvance(ctx, next, arc.InstanceStateActive, player, player.Version, record); err != nil {
		return AdvanceResult{}, storeErr(err, "arc advance")
	}

	return AdvanceResult{Instance: next, Resolution: resolution, Snapshot: resolution.Snapshot}, nil
}

// DeferArcStep postpones the current step of a running arc by one day.
// The due date holds; only the defer count grows.
func (e *Engine) DeferArcStep(ctx context.Context, userID, instanceID string, dayIndex int) (arc.Instance, error) {
	ctx, span := e.tracer.Start(ctx, "engine.DeferArcStep", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("instance.id", instanceID),
	))
	defer span.End()

	instance, err := e.arcs.GetInstance(ctx, instanceID)
	if err != nil {
		return arc.Instance{}, storeErr(err, "arc instance")
	}
	if instance.UserID != userID {
		return arc.Instance{}, apperrors.New(apperrors.CodeNotFound, "arc instance not found")
	}
	deferred, err := instance.Defer(dayIndex)
	if err != nil {
		return arc.Instance{}, err
	}
	if err := e.arcs.UpdateInstance(ctx, deferred, arc.InstanceStateActive); err != nil {
		return arc.Instance{}, storeErr(err, "arc instance")
	}
	return deferred, nil
}

// SweepResult reports one arc failed by the overdue sweep.
type SweepResult struct {
	Instance arc.Instance
	Strain   resources.Delta
}

// SweepOverdueArcs fails every active arc whose current step passed its
// hard deadline, applying the hesitation strain to the player's
// resources once per failed arc.
func (e *Engine) SweepOverdueArcs(ctx context.Context, userID string, dayIndex int) ([]SweepResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.SweepOverdueArcs", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("day.index", dayIndex),
	))
	defer span.End()

	if err := validateUserDay(userID, dayIndex); err != nil {
		return nil, err
	}

	instances, err := e.arcs.ListActiveInstances(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}

	player, err := e.players.GetPlayer(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "player")
	}

	var swept []SweepResult
	for _, instance := range instances {
		def, err := e.content.GetArcDefinition(ctx, instance.ArcKey)
		if err != nil {
			return nil, storeErr(err, "arc definition")
		}
		step, err := def.StepByKey(instance.CurrentStepKey)
		if err != nil {
			return nil, err
		}
		if !instance.Overdue(step, dayIndex) {
			continue
		}
		failed, next, applied, err := instance.FailOverdue(step, dayIndex, e.strain, player.Snapshot)
		if err != nil {
			return nil, err
		}
		if err := e.arcs.UpdateInstance(ctx, failed, arc.InstanceStateActive); err != nil {
			return nil, storeErr(err, "arc instance")
		}
		player.Snapshot = next
		swept = append(swept, SweepResult{Instance: failed, Strain: applied})
	}

	if len(swept) > 0 {
		player.UpdatedAt = e.now().UTC()
		if err := e.players.PutPlayer(ctx, player, player.Version); err != nil {
			return nil, storeErr(err, "player")
		}
	}
	return swept, nil
}
