package arc

import (
	"fmt"
	"strconv"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
)

// OfferState describes the lifecycle of an arc offer.
type OfferState int

const (
	// OfferStateUnspecified represents an invalid offer state value.
	OfferStateUnspecified OfferState = iota
	// OfferStateActive indicates the offer is open and being shown.
	OfferStateActive
	// OfferStateAccepted indicates the offer converted to an instance. Terminal.
	OfferStateAccepted
	// OfferStateExpired indicates the offer's window lapsed. Terminal.
	OfferStateExpired
	// OfferStateDismissed indicates the player declined the offer. Terminal.
	OfferStateDismissed
)

func (s OfferState) String() string {
	switch s {
	case OfferStateActive:
		return "ACTIVE"
	case OfferStateAccepted:
		return "ACCEPTED"
	case OfferStateExpired:
		return "EXPIRED"
	case OfferStateDismissed:
		return "DISMISSED"
	default:
		return "UNSPECIFIED"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s OfferState) Terminal() bool {
	return s == OfferStateAccepted || s == OfferStateExpired || s == OfferStateDismissed
}

// ToneMax is the highest escalation tier an offer can reach.
const ToneMax = 3

// Offer is a surfaced arc awaiting the player's decision.
type Offer struct {
	ID           string
	UserID       string
	ArcKey       string
	OfferKey     string
	State        OfferState
	TimesShown   int
	ToneLevel    int
	FirstSeenDay int
	LastSeenDay  int
	ExpiresOnDay int
}

// ErrOfferTerminal indicates a transition attempted on a resolved offer.
var ErrOfferTerminal = apperrors.New(apperrors.CodeOfferTerminal, "offer is already resolved")

// ToneForTimesShown maps how often an offer has been shown to its
// narrative escalation tier. The top tier is deliberately unreached
// until the fourth show: three shows hold at tier 2.
func ToneForTimesShown(timesShown int) int {
	switch {
	case timesShown <= 0:
		return 0
	case timesShown == 1:
		return 1
	case timesShown < 4:
		return 2
	default:
		return ToneMax
	}
}

// NewOffer creates an offer the first day its arc becomes eligible.
// The offer has not been shown yet; RecordShown marks each display.
func NewOffer(offerID, userID string, def Definition, day int) Offer {
	return Offer{
		ID:           offerID,
		UserID:       userID,
		ArcKey:       def.Key,
		OfferKey:     fmt.Sprintf("%s:%d", def.Key, day),
		State:        OfferStateActive,
		TimesShown:   0,
		ToneLevel:    ToneForTimesShown(0),
		FirstSeenDay: day,
		LastSeenDay:  day,
		ExpiresOnDay: day + def.OfferWindowDays,
	}
}

// RecordShown marks one more display of the offer, escalating its tone.
// An offer counts at most one show per day; a repeat display on the same
// day is a retry and leaves the offer unchanged.
func (o Offer) RecordShown(day int) (Offer, error) {
	if o.State != OfferStateActive {
		return Offer{}, ErrOfferTerminal
	}
	if o.TimesShown > 0 && o.LastSeenDay == day {
		return o, nil
	}
	o.TimesShown++
	o.ToneLevel = ToneForTimesShown(o.TimesShown)
	o.LastSeenDay = day
	return o, nil
}

// ShouldExpire reports whether the offer's window has lapsed by the
// given day. The expiry day itself is still inside the window.
func (o Offer) ShouldExpire(day int) bool {
	return o.State == OfferStateActive && day > o.ExpiresOnDay
}

// Expire transitions the offer to EXPIRED. Expiry is checked lazily on
// read; there is no background timer.
func (o Offer) Expire() (Offer, error) {
	if o.State != OfferStateActive {
		return Offer{}, ErrOfferTerminal
	}
	o.State = OfferStateExpired
	return o, nil
}

// Dismiss transitions the offer to DISMISSED.
func (o Offer) Dismiss() (Offer, error) {
	if o.State != OfferStateActive {
		return Offer{}, ErrOfferTerminal
	}
	o.State = OfferStateDismissed
	return o, nil
}

// Accept converts the offer into a running arc instance. The offer
// stays ACCEPTED permanently; exactly one instance is created.
func (o Offer) Accept(instanceID string, def Definition, day int) (Offer, Instance, error) {
	if o.State != OfferStateActive {
		return Offer{}, Instance{}, ErrOfferTerminal
	}
	if o.ShouldExpire(day) {
		return Offer{}, Instance{}, apperrors.WithMetadata(
			apperrors.CodeOfferExpired,
			fmt.Sprintf("offer %s expired on day %d", o.ID, o.ExpiresOnDay),
			map[string]string{"ExpiresOnDay": strconv.Itoa(o.ExpiresOnDay)},
		)
	}

	instance, err := NewInstance(instanceID, o.UserID, def, day)
	if err != nil {
		return Offer{}, Instance{}, err
	}
	o.State = OfferStateAccepted
	return o, instance, nil
}
