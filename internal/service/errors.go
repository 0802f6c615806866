package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrVersionConflict is returned when an optimistic-concurrency write loses
	// to a concurrent update
	ErrVersionConflict = errors.New("record was modified concurrently")

	// ErrInvalidRecordKind is returned when a polymorphic reference names an
	// unknown record kind
	ErrInvalidRecordKind = errors.New("invalid record kind")

	// ErrRecordNotFound is returned when a polymorphic reference points at a
	// record that does not exist
	ErrRecordNotFound = errors.New("referenced record not found")

	// ErrAmbiguousRole is returned when a role expected to be singular is held
	// by more than one party on the same record
	ErrAmbiguousRole = errors.New("role held by multiple parties on record")

	// ErrDuplicateRole is returned when the exact role association already exists
	ErrDuplicateRole = errors.New("role already assigned on record")

	// ErrSingularRoleTaken is returned when assigning a singular role (Insured,
	// Lead Insurer) that another party already holds on the record
	ErrSingularRoleTaken = errors.New("singular role already held on record")

	// ErrInvalidStatusTransition is returned for a submission status move that
	// the lifecycle does not define (including any regression)
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrSubmissionTerminal is returned when mutating a BOUND or DECLINED submission
	ErrSubmissionTerminal = errors.New("submission is in a terminal status")

	// ErrNoReleasedQuote is returned when moving to QUOTED without a SENT or
	// ACCEPTED quote on the submission
	ErrNoReleasedQuote = errors.New("no sent or accepted quote on submission")

	// ErrQuoteNotAccepted is returned when binding a policy from a quote that
	// is not ACCEPTED
	ErrQuoteNotAccepted = errors.New("quote is not accepted")

	// ErrSubmissionNotQuoted is returned when binding a submission that is not
	// in QUOTED status with the quote released to the broker
	ErrSubmissionNotQuoted = errors.New("submission is not quoted and accepted")

	// ErrQuoteAlreadyAccepted is returned when accepting a second quote on a submission
	ErrQuoteAlreadyAccepted = errors.New("submission already has an accepted quote")

	// ErrInvalidCoverageTerms is returned when a coverage's limit is below its deductible
	ErrInvalidCoverageTerms = errors.New("coverage limit must be at least the deductible")

	// ErrInvalidClaimDates is returned when a claim's date of loss is after its
	// reported date
	ErrInvalidClaimDates = errors.New("date of loss must not be after reported date")

	// ErrSharesExceedFull is returned when adding a coinsurer or layer
	// participant would push total shares above 100%
	ErrSharesExceedFull = errors.New("shares would exceed 100 percent")

	// ErrDuplicateLead is returned when adding a second lead coinsurer
	ErrDuplicateLead = errors.New("policy already has a lead insurer")

	// ErrNoLeadInsurer is returned when a policy has coinsurers but no lead row
	ErrNoLeadInsurer = errors.New("policy has no lead insurer")

	// ErrNonContiguousLayer is returned when a layer's attachment point does not
	// equal the cumulative limit of the layers beneath it
	ErrNonContiguousLayer = errors.New("layer attachment point breaks tower contiguity")

	// ErrUnbalancedLayer is returned when a layer's participant shares do not
	// sum to 100 percent
	ErrUnbalancedLayer = errors.New("layer participant shares do not sum to 100 percent")

	// ErrNoTreaty is returned when allocating against a policy without a treaty
	ErrNoTreaty = errors.New("policy has no reinsurance treaty")

	// ErrRecoveryExceedsPotential is returned when a subrogation recovery would
	// exceed the recorded potential amount
	ErrRecoveryExceedsPotential = errors.New("actual recovery exceeds potential recovery")

	// ErrCashCallPaid is returned when mutating a cash call that is already PAID
	ErrCashCallPaid = errors.New("cash call is already paid")
)
