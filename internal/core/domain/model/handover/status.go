package handover

import (
	"fmt"

	"partialdelivery/internal/pkg/errs"
)

// Status represents the lifecycle state of a handover coordination.
//
// State transitions (happy path):
//
//	Initiated ──> AwaitingConfirmation ──> Confirmed ──> Completed
//
// AwaitingConfirmation may additionally transition to Cancelled when the
// confirmation window elapses with the receiving segment still unassigned,
// or when the parent chain is cancelled.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusInitiated means the finishing courier has opened the handover.
	StatusInitiated

	// StatusAwaitingConfirmation means the handover waits for the receiving
	// courier to confirm with the verification code.
	StatusAwaitingConfirmation

	// StatusConfirmed means the receiving courier presented the correct code.
	StatusConfirmed

	// StatusCompleted means both segment transitions were independently
	// observed. Final.
	StatusCompleted

	// StatusCancelled means the handover was abandoned. Final; not part of
	// the happy path.
	StatusCancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:              "Unknown",
		StatusInitiated:            "initiated",
		StatusAwaitingConfirmation: "awaiting_confirmation",
		StatusConfirmed:            "confirmed",
		StatusCompleted:            "completed",
		StatusCancelled:            "cancelled",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("handover status is invalid",
			fmt.Errorf("%d is not a valid handover status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("handover status is invalid",
			fmt.Errorf("%d is not a valid handover status", s))
	}
	return nil
}

// String returns the wire name of the status. It implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// StatusFromString parses a wire name back into a Status.
func StatusFromString(value string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != StatusUnknown && str == value {
			return status, nil
		}
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("handover status is invalid",
		fmt.Errorf("%q is not a valid handover status", value))
}

// IsTerminal reports whether the status allows no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Await transitions the status to AwaitingConfirmation.
//
// Valid transitions:
//   - Initiated -> AwaitingConfirmation
func (s Status) Await() (Status, error) {
	if s != StatusInitiated {
		return 0, errs.NewValueIsInvalidErrorWithCause("handover status is invalid",
			fmt.Errorf("%s is not a valid status to await confirmation", s))
	}
	return StatusAwaitingConfirmation, nil
}

// Confirm transitions the status to Confirmed.
//
// Valid transitions:
//   - AwaitingConfirmation -> Confirmed
func (s Status) Confirm() (Status, error) {
	if s != StatusAwaitingConfirmation {
		return 0, errs.NewValueIsInvalidErrorWithCause("handover status is invalid",
			fmt.Errorf("%s is not a valid status to confirm", s))
	}
	return StatusConfirmed, nil
}

// Complete transitions the status to Completed.
//
// Valid transitions:
//   - Confirmed -> Completed
func (s Status) Complete() (Status, error) {
	if s != StatusConfirmed {
		return 0, errs.NewValueIsInvalidErrorWithCause("handover status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s))
	}
	return StatusCompleted, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid from any non-terminal status.
func (s Status) Cancel() (Status, error) {
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause("handover status is invalid",
			fmt.Errorf("%s is not a valid status to cancel", s))
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return StatusCancelled, nil
}
