// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input validation errors
	CodeUserIDEmpty     Code = "USER_ID_EMPTY"
	CodeDayIndexInvalid Code = "DAY_INDEX_INVALID"
	CodeSeedEmpty       Code = "SEED_EMPTY"

	// Chance/outcome errors
	CodeOutcomeMissing       Code = "OUTCOME_MISSING"
	CodeOutcomeInvalidWeight Code = "OUTCOME_INVALID_WEIGHT"

	// Resource errors
	CodeResourceInsufficient Code = "RESOURCE_INSUFFICIENT"

	// Storylet errors
	CodeStoryletNoContent     Code = "STORYLET_NO_CONTENT"
	CodeStoryletUnknownChoice Code = "STORYLET_UNKNOWN_CHOICE"
	CodeRunAlreadyRecorded    Code = "RUN_ALREADY_RECORDED"

	// Arc offer errors
	CodeOfferTerminal Code = "OFFER_TERMINAL"
	CodeOfferExpired  Code = "OFFER_EXPIRED"

	// Arc instance errors
	CodeArcNotActive      Code = "ARC_NOT_ACTIVE"
	CodeArcAlreadyActive  Code = "ARC_ALREADY_ACTIVE"
	CodeArcUnknownStep    Code = "ARC_UNKNOWN_STEP"
	CodeArcUnknownOption  Code = "ARC_UNKNOWN_OPTION"
	CodeArcSlotsExhausted Code = "ARC_SLOTS_EXHAUSTED"

	// Alignment errors
	CodeAlignmentEmptyFaction   Code = "ALIGNMENT_EMPTY_FACTION"
	CodeAlignmentDailyCap       Code = "ALIGNMENT_DAILY_CAP"
	CodeAlignmentDuplicateEvent Code = "ALIGNMENT_DUPLICATE_EVENT"

	// Daily loop errors
	CodeBoostAlreadySent Code = "BOOST_ALREADY_SENT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeUserIDEmpty,
		CodeDayIndexInvalid,
		CodeSeedEmpty,
		CodeOutcomeMissing,
		CodeOutcomeInvalidWeight,
		CodeAlignmentEmptyFaction:
		return codes.InvalidArgument

	// FailedPrecondition - valid input, wrong state
	case CodeResourceInsufficient,
		CodeOfferTerminal,
		CodeOfferExpired,
		CodeArcNotActive,
		CodeArcAlreadyActive,
		CodeRunAlreadyRecorded,
		CodeBoostAlreadySent,
		CodeAlignmentDuplicateEvent:
		return codes.FailedPrecondition

	// ResourceExhausted - daily caps hit, expected steady-state rejections
	case CodeArcSlotsExhausted,
		CodeAlignmentDailyCap:
		return codes.ResourceExhausted

	// NotFound - missing entities or content references
	case CodeNotFound,
		CodeStoryletNoContent,
		CodeStoryletUnknownChoice,
		CodeArcUnknownStep,
		CodeArcUnknownOption:
		return codes.NotFound

	// Aborted - optimistic concurrency failures, caller should retry
	case CodeConflict:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
