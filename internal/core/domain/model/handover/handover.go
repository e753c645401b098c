package handover

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

// verificationCodeDigits is the length of the generated verification code.
const verificationCodeDigits = 6

// Domain errors for handover operations.
var (
	// ErrHandoverIsNotConstructed is returned when using an improperly
	// initialized Handover.
	ErrHandoverIsNotConstructed = errors.New(
		"Handover must be created via NewHandover or RestoreHandover")

	// ErrInvalidVerificationCode is returned when the confirming courier
	// presents a code that does not match. The handover state is unchanged.
	ErrInvalidVerificationCode = errors.New("verification code does not match")

	// ErrVerificationLocked is returned once the attempt cap is exhausted;
	// further confirmation attempts are rejected without comparing codes.
	ErrVerificationLocked = errors.New("verification attempt limit exceeded")

	// ErrHandoverTimeout is returned when a handover is abandoned because the
	// confirmation window elapsed with the receiving segment unassigned.
	ErrHandoverTimeout = errors.New("handover confirmation window elapsed")
)

// Handover is the transfer contract between two adjacent segments: the
// courier finishing the from-segment and the courier starting the to-segment.
//
// Invariants:
//   - can only be initiated while the from-segment is in progress
//   - completion requires the conjunction of two independently observed
//     segment transitions (from completed, to in progress); a single courier
//     can never close the handover unilaterally
type Handover struct {
	// id uniquely identifies the handover
	id kernel.UUID
	// partialDeliveryID references the chain both segments belong to
	partialDeliveryID kernel.UUID
	// fromSegmentID is the segment being finished
	fromSegmentID kernel.UUID
	// toSegmentID is the segment being started
	toSegmentID kernel.UUID
	// location is the agreed physical transfer point
	location kernel.GeoPoint
	// estimatedTime is when the transfer is expected to happen
	estimatedTime time.Time
	// verificationCode is the short shared secret confirming the transfer
	verificationCode string
	// status is the current protocol state
	status Status
	// attempts counts failed confirmation attempts
	attempts int
	// confirmedBy records which courier confirmed, once confirmed
	confirmedBy *kernel.UUID
	// createdAt is when the handover was initiated
	createdAt time.Time
	// guard ensures the handover was properly constructed
	guard guard.ConstructorGuard
}

// NewHandover initiates a handover between two adjacent segments and
// generates a fresh verification code. The returned handover is already in
// AwaitingConfirmation: the protocol enters the waiting state immediately
// after initiation.
func NewHandover(
	id, partialDeliveryID, fromSegmentID, toSegmentID kernel.UUID,
	location kernel.GeoPoint,
	estimatedTime time.Time,
) (*Handover, error) {
	if err := errors.Join(
		id.Validate(),
		partialDeliveryID.Validate(),
		fromSegmentID.Validate(),
		toSegmentID.Validate(),
		location.Validate(),
	); err != nil {
		return nil, err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	status, err := StatusInitiated.Await()
	if err != nil {
		return nil, err
	}

	return &Handover{
		id:                id,
		partialDeliveryID: partialDeliveryID,
		fromSegmentID:     fromSegmentID,
		toSegmentID:       toSegmentID,
		location:          location,
		estimatedTime:     estimatedTime,
		verificationCode:  code,
		status:            status,
		createdAt:         time.Now().UTC(),
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// RestoreHandover rebuilds a handover from persistence.
func RestoreHandover(
	id, partialDeliveryID, fromSegmentID, toSegmentID kernel.UUID,
	location kernel.GeoPoint,
	estimatedTime time.Time,
	verificationCode string,
	status Status,
	attempts int,
	confirmedBy *kernel.UUID,
	createdAt time.Time,
) (*Handover, error) {
	if err := errors.Join(
		id.Validate(),
		partialDeliveryID.Validate(),
		fromSegmentID.Validate(),
		toSegmentID.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Handover{
		id:                id,
		partialDeliveryID: partialDeliveryID,
		fromSegmentID:     fromSegmentID,
		toSegmentID:       toSegmentID,
		location:          location,
		estimatedTime:     estimatedTime,
		verificationCode:  verificationCode,
		status:            status,
		attempts:          attempts,
		confirmedBy:       confirmedBy,
		createdAt:         createdAt,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Handover was created via a constructor.
func (h *Handover) Validate() error {
	if h == nil {
		return ErrHandoverIsNotConstructed
	}
	return h.guard.Validate(ErrHandoverIsNotConstructed)
}

// ID returns the handover's unique identifier.
func (h *Handover) ID() kernel.UUID { return h.id }

// PartialDeliveryID returns the chain both segments belong to.
func (h *Handover) PartialDeliveryID() kernel.UUID { return h.partialDeliveryID }

// FromSegmentID returns the segment being finished.
func (h *Handover) FromSegmentID() kernel.UUID { return h.fromSegmentID }

// ToSegmentID returns the segment being started.
func (h *Handover) ToSegmentID() kernel.UUID { return h.toSegmentID }

// Location returns the agreed transfer point.
func (h *Handover) Location() kernel.GeoPoint { return h.location }

// EstimatedTime returns when the transfer is expected to happen.
func (h *Handover) EstimatedTime() time.Time { return h.estimatedTime }

// VerificationCode returns the shared secret. It is exposed only to the
// initiating courier; transports must not broadcast it to the room.
func (h *Handover) VerificationCode() string { return h.verificationCode }

// Status returns the current protocol state.
func (h *Handover) Status() Status { return h.status }

// Attempts returns the number of failed confirmation attempts so far.
func (h *Handover) Attempts() int { return h.attempts }

// ConfirmedBy returns the confirming courier once confirmed, else nil.
func (h *Handover) ConfirmedBy() *kernel.UUID { return h.confirmedBy }

// CreatedAt returns when the handover was initiated.
func (h *Handover) CreatedAt() time.Time { return h.createdAt }

// Confirm moves the handover to Confirmed if the supplied code matches.
//
// Business rules:
//   - a mismatching code returns ErrInvalidVerificationCode without a state
//     change, but consumes one attempt
//   - after attemptCap failed attempts the handover locks and every further
//     attempt returns ErrVerificationLocked
func (h *Handover) Confirm(code string, confirmingCourierID kernel.UUID, attemptCap int) error {
	if err := confirmingCourierID.Validate(); err != nil {
		return err
	}

	if _, err := h.status.Confirm(); err != nil {
		return err
	}

	if h.attempts >= attemptCap {
		return ErrVerificationLocked
	}

	if code != h.verificationCode {
		h.attempts++
		return ErrInvalidVerificationCode
	}

	newStatus, err := h.status.Confirm()
	if err != nil {
		return err
	}

	h.status = newStatus
	h.confirmedBy = &confirmingCourierID
	return nil
}

// Complete closes the handover. It is system-triggered only: callers invoke
// it once the registry has independently observed the from-segment completed
// and the to-segment in progress.
func (h *Handover) Complete() error {
	newStatus, err := h.status.Complete()
	if err != nil {
		return err
	}

	h.status = newStatus
	return nil
}

// Abandon cancels a handover whose confirmation window elapsed. The finishing
// courier keeps the package; the system does not auto-reassign mid-handover.
func (h *Handover) Abandon() error {
	newStatus, err := h.status.Cancel()
	if err != nil {
		return err
	}

	h.status = newStatus
	return nil
}

// IsExpired reports whether the confirmation window has elapsed.
func (h *Handover) IsExpired(window time.Duration, now time.Time) bool {
	return h.status == StatusAwaitingConfirmation && now.Sub(h.createdAt) > window
}

// generateVerificationCode produces a zero-padded numeric code using
// crypto/rand so codes are not guessable from previous ones.
func generateVerificationCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < verificationCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}

	return fmt.Sprintf("%0*d", verificationCodeDigits, n), nil
}
