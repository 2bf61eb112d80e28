package engine

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ameliebruno/daybound/internal/alignment"
	"github.com/ameliebruno/daybound/internal/storage"
)

// CreditResult reports what an alignment submission actually did.
type CreditResult struct {
	Score alignment.Score
	// Applied is the delta that landed after clamping and capping, zero
	// for a no-op.
	Applied bool
	Capped  bool
	// Duplicate is true when this (source, sourceRef) was already
	// credited; the call changed nothing.
	Duplicate bool
}

// CreditAlignment applies one alignment delta idempotently. A retried
// (source, sourceRef) submission is detected against the ledger and
// absorbed; daily gains are capped per faction.
func (e *Engine) CreditAlignment(ctx context.Context, in alignment.DeltaInput) (CreditResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CreditAlignment", trace.WithAttributes(
		attribute.String("user.id", in.UserID),
		attribute.String("faction.key", in.FactionKey),
	))
	defer span.End()

	exists, err := e.alignments.HasEvent(ctx, in.UserID, in.Source, in.SourceRef)
	if err != nil {
		return CreditResult{}, err
	}
	if exists {
		score, err := e.alignments.GetScore(ctx, in.UserID, in.FactionKey)
		if err != nil {
			return CreditResult{}, err
		}
		return CreditResult{Score: score, Duplicate: true}, nil
	}

	score, err := e.alignments.GetScore(ctx, in.UserID, in.FactionKey)
	if err != nil {
		return CreditResult{}, err
	}
	todaySum, err := e.alignments.TodayPositiveSum(ctx, in.UserID, in.FactionKey, in.DayIndex)
	if err != nil {
		return CreditResult{}, err
	}

	result, err := alignment.ApplyDelta(in, score, todaySum)
	if err != nil {
		return CreditResult{}, err
	}
	if result.Event == nil {
		return CreditResult{Score: result.Score, Capped: result.Capped}, nil
	}

	if err := e.alignments.AppendEvent(ctx, *result.Event); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// Lost a race with an identical submission.
			return CreditResult{Score: score, Duplicate: true}, nil
		}
		return CreditResult{}, err
	}
	if err := e.alignments.PutScore(ctx, result.Score); err != nil {
		return CreditResult{}, err
	}
	return CreditResult{Score: result.Score, Applied: true, Capped: result.Capped}, nil
}
