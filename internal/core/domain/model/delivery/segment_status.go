package delivery

import (
	"fmt"

	"partialdelivery/internal/pkg/errs"
)

// SegmentStatus represents the lifecycle state of a single segment.
//
// State transitions:
//
//	Proposed ──> Accepted ──> InProgress ──> Completed
//	    ▲            │             │
//	    │            ▼             ▼
//	    └───────── Failed ◄────────┘
//	 (reopened for a new courier)
//
// Any non-terminal status may additionally transition to Cancelled when
// the parent chain is cancelled. Completed and Cancelled are final.
type SegmentStatus int

const (
	// SegmentStatusUnknown represents an invalid or undefined status.
	SegmentStatusUnknown SegmentStatus = iota

	// SegmentProposed means the segment is open for acceptance by any courier.
	SegmentProposed

	// SegmentAccepted means exactly one courier holds the segment but has not
	// picked up the package yet.
	SegmentAccepted

	// SegmentInProgress means the owning courier has picked up the package.
	SegmentInProgress

	// SegmentCompleted means the segment was delivered or handed over. Final.
	SegmentCompleted

	// SegmentFailed means the owning courier aborted or went stale. The
	// segment is re-opened as Proposed unless the re-proposal budget is spent.
	SegmentFailed

	// SegmentCancelled means the segment was withdrawn with its parent chain. Final.
	SegmentCancelled
)

func getSegmentStatusStrings() map[SegmentStatus]string {
	return map[SegmentStatus]string{
		SegmentStatusUnknown: "Unknown",
		SegmentProposed:      "proposed",
		SegmentAccepted:      "accepted",
		SegmentInProgress:    "in_progress",
		SegmentCompleted:     "completed",
		SegmentFailed:        "failed",
		SegmentCancelled:     "cancelled",
	}
}

// Validate checks if the SegmentStatus value is valid.
func (s SegmentStatus) Validate() error {
	if s == SegmentStatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%d is not a valid segment status", s))
	}
	if _, ok := getSegmentStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%d is not a valid segment status", s))
	}
	return nil
}

// String returns the wire name of the status. It implements fmt.Stringer.
func (s SegmentStatus) String() string {
	if str, ok := getSegmentStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// SegmentStatusFromString parses a wire name back into a SegmentStatus.
func SegmentStatusFromString(value string) (SegmentStatus, error) {
	for status, str := range getSegmentStatusStrings() {
		if status != SegmentStatusUnknown && str == value {
			return status, nil
		}
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
		fmt.Errorf("%q is not a valid segment status", value))
}

// IsTerminal reports whether the status allows no further transitions.
func (s SegmentStatus) IsTerminal() bool {
	return s == SegmentCompleted || s == SegmentCancelled
}

// Accept transitions the status to Accepted.
//
// Valid transitions:
//   - Proposed -> Accepted
func (s SegmentStatus) Accept() (SegmentStatus, error) {
	if s != SegmentProposed {
		return 0, errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%s is not a valid status to accept", s))
	}
	return SegmentAccepted, nil
}

// Start transitions the status to InProgress.
//
// Valid transitions:
//   - Accepted -> InProgress
func (s SegmentStatus) Start() (SegmentStatus, error) {
	if s != SegmentAccepted {
		return 0, errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%s is not a valid status to start", s))
	}
	return SegmentInProgress, nil
}

// Complete transitions the status to Completed.
//
// Valid transitions:
//   - InProgress -> Completed
func (s SegmentStatus) Complete() (SegmentStatus, error) {
	if s != SegmentInProgress {
		return 0, errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s))
	}
	return SegmentCompleted, nil
}

// Fail transitions the status to Failed.
//
// Valid transitions:
//   - Accepted -> Failed
//   - InProgress -> Failed
func (s SegmentStatus) Fail() (SegmentStatus, error) {
	if s != SegmentAccepted && s != SegmentInProgress {
		return 0, errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%s is not a valid status to fail", s))
	}
	return SegmentFailed, nil
}

// Reopen transitions the status back to Proposed after a failure.
//
// Valid transitions:
//   - Failed -> Proposed
func (s SegmentStatus) Reopen() (SegmentStatus, error) {
	if s != SegmentFailed {
		return 0, errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%s is not a valid status to reopen", s))
	}
	return SegmentProposed, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid from any non-terminal status.
func (s SegmentStatus) Cancel() (SegmentStatus, error) {
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			fmt.Errorf("%s is not a valid status to cancel", s))
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return SegmentCancelled, nil
}
