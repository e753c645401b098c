package delivery

import (
	"fmt"

	"partialdelivery/internal/pkg/errs"
)

// Status represents the lifecycle state of a partial delivery chain.
//
// State transitions:
//
//	Pending ──> Active ──┬──> Completed
//	    │                │
//	    └────────────────┴──> Cancelled
//
// Completed is derived from the child segments and is never set directly
// by callers; Cancelled is entered by explicit cancellation or when the
// re-proposal budget of a segment is exhausted.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusPending is the initial status after the chain is created but
	// before couriers can see its segments.
	StatusPending

	// StatusActive indicates the chain has been activated and its segments
	// are visible to couriers.
	StatusActive

	// StatusCompleted indicates every segment has been completed.
	// This is a final state with no further transitions allowed.
	StatusCompleted

	// StatusCancelled indicates the chain was aborted. This is a final state.
	StatusCancelled
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:   "Unknown",
		StatusPending:   "pending",
		StatusActive:    "active",
		StatusCompleted: "completed",
		StatusCancelled: "cancelled",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:   "pending",
		StatusActive:    "active",
		StatusCompleted: "completed",
		StatusCancelled: "cancelled",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid delivery status", s))
	}
	return nil
}

// String returns the wire name of the status. It implements fmt.Stringer
// and is safe to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// StatusFromString parses a wire name back into a Status.
func StatusFromString(value string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == value {
			return status, nil
		}
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid delivery status", value))
}

// IsTerminal reports whether the status allows no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Activate transitions the status to Active.
//
// Valid transitions:
//   - Pending -> Active
func (s Status) Activate() (Status, error) {
	if s != StatusPending {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to activate", s))
	}
	return StatusActive, nil
}

// Complete transitions the status to Completed.
//
// Valid transitions:
//   - Active -> Completed
func (s Status) Complete() (Status, error) {
	if s != StatusActive {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s))
	}
	return StatusCompleted, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Pending -> Cancelled
//   - Active -> Cancelled
func (s Status) Cancel() (Status, error) {
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to cancel", s))
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return StatusCancelled, nil
}
