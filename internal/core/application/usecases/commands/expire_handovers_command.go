package commands

import (
	"errors"

	"partialdelivery/internal/pkg/guard"
)

var ErrExpireHandoversCommandIsNotConstructed = errors.New(
	"ExpireHandoversCommand must be created via NewExpireHandoversCommand constructor",
)

// ExpireHandoversCommand triggers the sweep of overdue handovers. Every
// handover still awaiting confirmation past its window is abandoned so the
// outgoing courier can re-initiate at a fresh meeting point.
//
// Example:
//
//	cmd := NewExpireHandoversCommand()
//	handler := NewExpireHandoversCommandHandler(uowFactory, window)
//	err := handler.Handle(ctx, cmd)
type ExpireHandoversCommand struct {
	guard guard.ConstructorGuard
}

// NewExpireHandoversCommand creates a new sweep trigger. This is a
// parameterless command; the window is handler configuration.
func NewExpireHandoversCommand() ExpireHandoversCommand {
	return ExpireHandoversCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c ExpireHandoversCommand) Validate() error {
	return c.guard.Validate(ErrExpireHandoversCommandIsNotConstructed)
}
