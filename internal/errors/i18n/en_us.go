package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUserIDEmpty             = "USER_ID_EMPTY"
	CodeDayIndexInvalid         = "DAY_INDEX_INVALID"
	CodeSeedEmpty               = "SEED_EMPTY"
	CodeOutcomeMissing          = "OUTCOME_MISSING"
	CodeOutcomeInvalidWeight    = "OUTCOME_INVALID_WEIGHT"
	CodeResourceInsufficient    = "RESOURCE_INSUFFICIENT"
	CodeStoryletNoContent       = "STORYLET_NO_CONTENT"
	CodeStoryletUnknownChoice   = "STORYLET_UNKNOWN_CHOICE"
	CodeRunAlreadyRecorded      = "RUN_ALREADY_RECORDED"
	CodeOfferTerminal           = "OFFER_TERMINAL"
	CodeOfferExpired            = "OFFER_EXPIRED"
	CodeArcNotActive            = "ARC_NOT_ACTIVE"
	CodeArcAlreadyActive        = "ARC_ALREADY_ACTIVE"
	CodeArcUnknownStep          = "ARC_UNKNOWN_STEP"
	CodeArcUnknownOption        = "ARC_UNKNOWN_OPTION"
	CodeArcSlotsExhausted       = "ARC_SLOTS_EXHAUSTED"
	CodeAlignmentEmptyFaction   = "ALIGNMENT_EMPTY_FACTION"
	CodeAlignmentDailyCap       = "ALIGNMENT_DAILY_CAP"
	CodeAlignmentDuplicateEvent = "ALIGNMENT_DUPLICATE_EVENT"
	CodeBoostAlreadySent        = "BOOST_ALREADY_SENT"
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Validation errors
		CodeUserIDEmpty:     "Player ID is required",
		CodeDayIndexInvalid: "Day index must be at least 1",
		CodeSeedEmpty:       "Action seed is required",

		// Outcome errors
		CodeOutcomeMissing:       "At least one outcome must be specified",
		CodeOutcomeInvalidWeight: "Outcome weights must be positive",

		// Resource errors
		CodeResourceInsufficient: "Not enough {{.Resource}}: you have {{.Have}} but need {{.Need}}",

		// Storylet errors
		CodeStoryletNoContent:     "No stories are available today",
		CodeStoryletUnknownChoice: "That choice is not part of this story",
		CodeRunAlreadyRecorded:    "You already played this story today",

		// Arc offer errors
		CodeOfferTerminal: "This opportunity has already been resolved",
		CodeOfferExpired:  "This opportunity expired on day {{.ExpiresOnDay}}",

		// Arc instance errors
		CodeArcNotActive:      "This storyline is no longer active",
		CodeArcAlreadyActive:  "You are already in the middle of another storyline",
		CodeArcUnknownStep:    "Unknown storyline step: {{.StepKey}}",
		CodeArcUnknownOption:  "Unknown storyline option: {{.OptionKey}}",
		CodeArcSlotsExhausted: "You have used {{.Used}} of {{.Cap}} storyline moves today, try again tomorrow",

		// Alignment errors
		CodeAlignmentEmptyFaction:   "Faction is required",
		CodeAlignmentDailyCap:       "Daily standing gains with {{.Faction}} are capped at {{.Cap}}",
		CodeAlignmentDuplicateEvent: "This choice has already been credited",

		// Daily loop errors
		CodeBoostAlreadySent: "You already sent a boost today",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
		CodeConflict: "Your day changed underneath you, please retry",
	},
}
