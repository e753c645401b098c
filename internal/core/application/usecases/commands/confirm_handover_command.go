package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var (
	ErrConfirmHandoverCommandIsNotConstructed = errors.New(
		"ConfirmHandoverCommand must be created via NewConfirmHandoverCommand constructor",
	)
	ErrVerificationCodeIsRequired = errors.New("verification code is required")
)

// ConfirmHandoverCommand represents the receiving courier entering the
// verification code at the meeting point.
type ConfirmHandoverCommand struct { //nolint:recvcheck //using for validation
	handoverID       kernel.UUID
	courierID        kernel.UUID
	verificationCode string

	guard guard.ConstructorGuard
}

// NewConfirmHandoverCommand creates a command to confirm a handover with the
// given code.
func NewConfirmHandoverCommand(handoverID, courierID kernel.UUID, verificationCode string) (ConfirmHandoverCommand, error) {
	cmd := ConfirmHandoverCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setHandoverID(handoverID),
		cmd.setCourierID(courierID),
		cmd.setVerificationCode(verificationCode),
	); err != nil {
		return ConfirmHandoverCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmHandoverCommand) Validate() error {
	return c.guard.Validate(ErrConfirmHandoverCommandIsNotConstructed)
}

// HandoverID returns the handover being confirmed.
func (c ConfirmHandoverCommand) HandoverID() kernel.UUID {
	return c.handoverID
}

// CourierID returns the confirming courier.
func (c ConfirmHandoverCommand) CourierID() kernel.UUID {
	return c.courierID
}

// VerificationCode returns the code the courier entered.
func (c ConfirmHandoverCommand) VerificationCode() string {
	return c.verificationCode
}

func (c *ConfirmHandoverCommand) setHandoverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.handoverID = id
	return nil
}

func (c *ConfirmHandoverCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}

func (c *ConfirmHandoverCommand) setVerificationCode(code string) error {
	if code == "" {
		return ErrVerificationCodeIsRequired
	}

	c.verificationCode = code
	return nil
}
