package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ameliebruno/daybound/internal/alignment"
	"github.com/ameliebruno/daybound/internal/arc"
	"github.com/ameliebruno/daybound/internal/storage"
	"github.com/ameliebruno/daybound/internal/storylet"
)

// fakeStore is an in-memory implementation of every storage port.
type fakeStore struct {
	players   map[string]storage.PlayerState
	runs      []storage.RunRecord
	offers    map[string]arc.Offer
	instances map[string]arc.Instance
	scores    map[string]alignment.Score
	events    []alignment.Event
	days      map[string]storage.DayRecord
	storylets map[string]storylet.Storylet
	defs      map[string]arc.Definition
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players:   map[string]storage.PlayerState{},
		offers:    map[string]arc.Offer{},
		instances: map[string]arc.Instance{},
		scores:    map[string]alignment.Score{},
		days:      map[string]storage.DayRecord{},
		storylets: map[string]storylet.Storylet{},
		defs:      map[string]arc.Definition{},
	}
}

func (f *fakeStore) GetPlayer(_ context.Context, userID string) (storage.PlayerState, error) {
	state, ok := f.players[userID]
	if !ok {
		return storage.PlayerState{}, storage.ErrNotFound
	}
	return state, nil
}

func (f *fakeStore) PutPlayer(_ context.Context, state storage.PlayerState, expectedVersion int64) error {
	current, ok := f.players[state.UserID]
	if expectedVersion == 0 {
		if ok {
			return storage.ErrConflict
		}
		state.Version = 1
		f.players[state.UserID] = state
		return nil
	}
	if !ok || current.Version != expectedVersion {
		return storage.ErrConflict
	}
	state.Version = expectedVersion + 1
	f.players[state.UserID] = state
	return nil
}

func (f *fakeStore) CreateRun(_ context.Context, run storage.RunRecord) error {
	for _, existing := range f.runs {
		if existing.UserID == run.UserID &&
			existing.DayIndex == run.DayIndex &&
			existing.StoryletID == run.StoryletID {
			return storage.ErrAlreadyExists
		}
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeStore) RecordPlay(ctx context.Context, run storage.RunRecord, state storage.PlayerState, expectedVersion int64) error {
	for _, existing := range f.runs {
		if existing.UserID == run.UserID &&
			existing.DayIndex == run.DayIndex &&
			existing.StoryletID == run.StoryletID {
			return storage.ErrAlreadyExists
		}
	}
	// Player CAS first: a stale version must leave no run behind.
	if err := f.PutPlayer(ctx, state, expectedVersion); err != nil {
		return err
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeStore) ListRunsByDay(_ context.Context, userID string, dayIndex int) ([]storage.RunRecord, error) {
	var out []storage.RunRecord
	for _, run := range f.runs {
		if run.UserID == userID && run.DayIndex == dayIndex {
			out = append(out, run)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRunsSince(_ context.Context, userID string, sinceDay int) ([]storage.RunRecord, error) {
	var out []storage.RunRecord
	for _, run := range f.runs {
		if run.UserID == userID && run.DayIndex >= sinceDay {
			out = append(out, run)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateOffer(_ context.Context, offer arc.Offer) error {
	if _, ok := f.offers[offer.ID]; ok {
		return storage.ErrAlreadyExists
	}
	f.offers[offer.ID] = offer
	return nil
}

func (f *fakeStore) GetOffer(_ context.Context, offerID string) (arc.Offer, error) {
	offer, ok := f.offers[offerID]
	if !ok {
		return arc.Offer{}, storage.ErrNotFound
	}
	return offer, nil
}

func (f *fakeStore) HasOffer(_ context.Context, userID, arcKey string) (bool, error) {
	for _, offer := range f.offers {
		if offer.UserID == userID && offer.ArcKey == arcKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListOpenOffers(_ context.Context, userID string) ([]arc.Offer, error) {
	var out []arc.Offer
	for _, offer := range f.offers {
		if offer.UserID == userID && offer.State == arc.OfferStateActive {
			out = append(out, offer)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeenDay != out[j].FirstSeenDay {
			return out[i].FirstSeenDay < out[j].FirstSeenDay
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) UpdateOffer(_ context.Context, offer arc.Offer, expected arc.OfferState) error {
	current, ok := f.offers[offer.ID]
	if !ok || current.State != expected {
		return storage.ErrConflict
	}
	f.offers[offer.ID] = offer
	return nil
}

func (f *fakeStore) CreateInstance(_ context.Context, instance arc.Instance) error {
	if _, ok := f.instances[instance.ID]; ok {
		return storage.ErrAlreadyExists
	}
	if instance.State == arc.InstanceStateActive {
		for _, existing := range f.instances {
			if existing.UserID == instance.UserID &&
				existing.ArcKey == instance.ArcKey &&
				existing.State == arc.InstanceStateActive {
				return storage.ErrAlreadyExists
			}
		}
	}
	f.instances[instance.ID] = instance
	return nil
}

func (f *fakeStore) GetInstance(_ context.Context, instanceID string) (arc.Instance, error) {
	instance, ok := f.instances[instanceID]
	if !ok {
		return arc.Instance{}, storage.ErrNotFound
	}
	return instance, nil
}

func (f *fakeStore) ListActiveInstances(_ context.Context, userID string) ([]arc.Instance, error) {
	var out []arc.Instance
	for _, instance := range f.instances {
		if instance.UserID == userID && instance.State == arc.InstanceStateActive {
			out = append(out, instance)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedDay != out[j].StartedDay {
			return out[i].StartedDay < out[j].StartedDay
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) UpdateInstance(_ context.Context, instance arc.Instance, expected arc.InstanceState) error {
	current, ok := f.instances[instance.ID]
	if !ok || current.State != expected {
		return storage.ErrConflict
	}
	f.instances[instance.ID] = instance
	return nil
}

func (f *fakeStore) RecordArcAdvance(ctx context.Context, instance arc.Instance, expectedState arc.InstanceState, state storage.PlayerState, expectedVersion int64, record storage.DayRecord) error {
	current, ok := f.instances[instance.ID]
	if !ok || current.State != expectedState {
		return storage.ErrConflict
	}
	if err := f.PutPlayer(ctx, state, expectedVersion); err != nil {
		return err
	}
	f.instances[instance.ID] = instance
	f.days[dayKey(record.UserID, record.DayIndex)] = record
	return nil
}

func scoreKey(userID, factionKey string) string {
	return userID + "|" + factionKey
}

func (f *fakeStore) GetScore(_ context.Context, userID, factionKey string) (alignment.Score, error) {
	score, ok := f.scores[scoreKey(userID, factionKey)]
	if !ok {
		return alignment.Score{UserID: userID, FactionKey: factionKey}, nil
	}
	return score, nil
}

func (f *fakeStore) ListScores(_ context.Context, userID string) ([]alignment.Score, error) {
	var out []alignment.Score
	for _, score := range f.scores {
		if score.UserID == userID {
			out = append(out, score)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FactionKey < out[j].FactionKey })
	return out, nil
}

func (f *fakeStore) PutScore(_ context.Context, score alignment.Score) error {
	f.scores[scoreKey(score.UserID, score.FactionKey)] = score
	return nil
}

func (f *fakeStore) AppendEvent(_ context.Context, event alignment.Event) error {
	for _, existing := range f.events {
		if existing.UserID == event.UserID &&
			existing.Source == event.Source &&
			existing.SourceRef == event.SourceRef {
			return storage.ErrAlreadyExists
		}
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) HasEvent(_ context.Context, userID, source, sourceRef string) (bool, error) {
	for _, event := range f.events {
		if event.UserID == userID && event.Source == source && event.SourceRef == sourceRef {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) TodayPositiveSum(_ context.Context, userID, factionKey string, dayIndex int) (int, error) {
	sum := 0
	for _, event := range f.events {
		if event.UserID == userID && event.FactionKey == factionKey &&
			event.DayIndex == dayIndex && event.Delta > 0 {
			sum += event.Delta
		}
	}
	return sum, nil
}

func dayKey(userID string, dayIndex int) string {
	return fmt.Sprintf("%s|%d", userID, dayIndex)
}

func (f *fakeStore) GetDay(_ context.Context, userID string, dayIndex int) (storage.DayRecord, error) {
	record, ok := f.days[dayKey(userID, dayIndex)]
	if !ok {
		return storage.DayRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) PutDay(_ context.Context, record storage.DayRecord) error {
	f.days[dayKey(record.UserID, record.DayIndex)] = record
	return nil
}

func (f *fakeStore) PutStorylet(_ context.Context, s storylet.Storylet) error {
	f.storylets[s.ID] = s
	return nil
}

func (f *fakeStore) GetStorylet(_ context.Context, id string) (storylet.Storylet, error) {
	s, ok := f.storylets[id]
	if !ok {
		return storylet.Storylet{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) ListStorylets(_ context.Context) ([]storylet.Storylet, error) {
	out := make([]storylet.Storylet, 0, len(f.storylets))
	for _, s := range f.storylets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) PutArcDefinition(_ context.Context, def arc.Definition) error {
	f.defs[def.Key] = def
	return nil
}

func (f *fakeStore) GetArcDefinition(_ context.Context, key string) (arc.Definition, error) {
	def, ok := f.defs[key]
	if !ok {
		return arc.Definition{}, storage.ErrNotFound
	}
	return def, nil
}

func (f *fakeStore) ListArcDefinitions(_ context.Context) ([]arc.Definition, error) {
	out := make([]arc.Definition, 0, len(f.defs))
	for _, def := range f.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// conflictStore wraps a fakeStore and fails a configured number of
// composite writes with ErrConflict, simulating lost version races.
type conflictStore struct {
	*fakeStore
	failPlays    int
	failAdvances int
}

func (c *conflictStore) RecordPlay(ctx context.Context, run storage.RunRecord, state storage.PlayerState, expectedVersion int64) error {
	if c.failPlays > 0 {
		c.failPlays--
		return storage.ErrConflict
	}
	return c.fakeStore.RecordPlay(ctx, run, state, expectedVersion)
}

func (c *conflictStore) RecordArcAdvance(ctx context.Context, instance arc.Instance, expectedState arc.InstanceState, state storage.PlayerState, expectedVersion int64, record storage.DayRecord) error {
	if c.failAdvances > 0 {
		c.failAdvances--
		return storage.ErrConflict
	}
	return c.fakeStore.RecordArcAdvance(ctx, instance, expectedState, state, expectedVersion, record)
}

// simStore is the union of every storage port, implemented by fakeStore
// and its wrappers.
type simStore interface {
	storage.PlayerStore
	storage.RunStore
	storage.ArcStore
	storage.AlignmentStore
	storage.DayStore
	storage.ContentStore
}

// newTestEngine wires an engine over one fake store with deterministic
// IDs and a frozen clock.
func newTestEngine(store simStore) *Engine {
	counter := 0
	return New(Config{
		Players:    store,
		Runs:       store,
		Arcs:       store,
		Alignments: store,
		Days:       store,
		Content:    store,
		SeedRoot:   "test",
		Now:        func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
		NewID: func() (string, error) {
			counter++
			return fmt.Sprintf("id-%d", counter), nil
		},
	})
}
