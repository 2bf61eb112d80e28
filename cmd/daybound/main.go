// Package main runs a deterministic demo simulation against a SQLite
// store: it seeds the builtin catalog when the store is empty, then
// plays one player through N days, printing every action.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ameliebruno/daybound/internal/alignment"
	"github.com/ameliebruno/daybound/internal/content"
	"github.com/ameliebruno/daybound/internal/engine"
	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/platform/config"
	"github.com/ameliebruno/daybound/internal/platform/otel"
	"github.com/ameliebruno/daybound/internal/storage/sqlite"
)

type appConfig struct {
	StorePath string `env:"DAYBOUND_STORE_PATH" envDefault:"daybound.db"`
	SeedRoot  string `env:"DAYBOUND_SEED_ROOT" envDefault:"daybound"`
	DemoUser  string `env:"DAYBOUND_DEMO_USER" envDefault:"demo"`
	DemoDays  int    `env:"DAYBOUND_DEMO_DAYS" envDefault:"7"`
}

func main() {
	log.SetPrefix("[DAYBOUND] ")

	var cfg appConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "daybound")
	if err != nil {
		config.Exitf("setup tracing: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		config.Exitf("open store: %v", err)
	}
	defer store.Close()

	existing, err := store.ListStorylets(ctx)
	if err != nil {
		config.Exitf("list storylets: %v", err)
	}
	if len(existing) == 0 {
		if err := content.Seed(ctx, store); err != nil {
			config.Exitf("seed content: %v", err)
		}
		log.Printf("seeded builtin catalog into %s", cfg.StorePath)
	}

	eng := engine.New(engine.Config{
		Players:    store,
		Runs:       store,
		Arcs:       store,
		Alignments: store,
		Days:       store,
		Content:    store,
		SeedRoot:   cfg.SeedRoot,
	})

	if err := simulate(ctx, eng, cfg.DemoUser, cfg.DemoDays); err != nil {
		config.Exitf("simulate: %v", err)
	}
}

// simulate plays one player through the daily loop for the given number
// of days, always taking the first available choice. The same store,
// seed root, and user replay the identical transcript.
func simulate(ctx context.Context, eng *engine.Engine, userID string, days int) error {
	for day := 1; day <= days; day++ {
		start, err := eng.StartDay(ctx, userID, day)
		if err != nil {
			return err
		}
		log.Printf("day %d: stage=%s energy=%d stress=%d morale=%d cash=%d",
			day, start.Stage,
			start.Player.Snapshot.Energy,
			start.Player.Snapshot.Stress,
			start.Player.Snapshot.Morale,
			start.Player.Snapshot.CashOnHand)

		if len(start.Storylets) == 0 {
			log.Printf("day %d: no content, skipping", day)
			continue
		}

		if err := eng.SaveAllocation(ctx, userID, day); err != nil {
			return err
		}

		swept, err := eng.SweepOverdueArcs(ctx, userID, day)
		if err != nil {
			return err
		}
		for _, failure := range swept {
			log.Printf("day %d: arc %s failed (%s), strain %v",
				day, failure.Instance.ArcKey, failure.Instance.FailureReason, failure.Strain)
		}

		for _, item := range start.Storylets {
			if len(item.Choices) == 0 {
				continue
			}
			choice := item.Choices[0]
			result, err := eng.PlayStorylet(ctx, userID, day, item.ID, choice.ID)
			if err != nil {
				return err
			}
			if result.AlreadyPlayed {
				continue
			}
			log.Printf("day %d: played %s/%s -> %s %v",
				day, item.ID, choice.ID, result.Outcome.ID, result.Applied)

			credit, err := eng.CreditAlignment(ctx, alignment.DeltaInput{
				UserID:     userID,
				DayIndex:   day,
				FactionKey: "townsfolk",
				Delta:      1,
				Source:     "storylet",
				SourceRef:  result.Run.ID,
			})
			if err != nil {
				return err
			}
			if credit.Applied {
				log.Printf("day %d: townsfolk alignment -> %d", day, credit.Score.Value)
			}
		}

		offers, err := eng.ShowArcOffers(ctx, userID, day)
		if err != nil {
			return err
		}
		for _, offer := range offers {
			log.Printf("day %d: offer %s tone=%d expires=%d",
				day, offer.ArcKey, offer.ToneLevel, offer.ExpiresOnDay)
		}
		if len(offers) > 0 {
			_, instance, err := eng.AcceptOffer(ctx, userID, offers[0].ID, day)
			if err != nil {
				return err
			}
			log.Printf("day %d: accepted arc %s, step %s due day %d",
				day, instance.ArcKey, instance.CurrentStepKey, instance.StepDueDay)
		}

		if err := advanceArcs(ctx, eng, userID, day); err != nil {
			return err
		}

		if err := eng.CompleteReflection(ctx, userID, day); err != nil {
			return err
		}
		stage, err := eng.DailyStage(ctx, userID, day)
		if err != nil {
			return err
		}
		log.Printf("day %d: closed at stage=%s", day, stage)
	}
	return nil
}

// advanceArcs takes the first option of every active arc until the
// daily slot cap pushes back.
func advanceArcs(ctx context.Context, eng *engine.Engine, userID string, day int) error {
	instances, err := eng.ActiveArcs(ctx, userID)
	if err != nil {
		return err
	}
	for _, instance := range instances {
		option, err := eng.FirstOption(ctx, instance)
		if err != nil {
			return err
		}
		result, err := eng.AdvanceArc(ctx, userID, instance.ID, option, day)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeArcSlotsExhausted) ||
				apperrors.IsCode(err, apperrors.CodeResourceInsufficient) {
				log.Printf("day %d: arc %s holds (%v)", day, instance.ArcKey, err)
				continue
			}
			return err
		}
		log.Printf("day %d: arc %s advanced to %s (completed=%t)",
			day, result.Instance.ArcKey, result.Instance.CurrentStepKey, result.Resolution.Completed)
	}
	return nil
}
