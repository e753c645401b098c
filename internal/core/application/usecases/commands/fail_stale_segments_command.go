package commands

import (
	"errors"

	"partialdelivery/internal/pkg/guard"
)

var ErrFailStaleSegmentsCommandIsNotConstructed = errors.New(
	"FailStaleSegmentsCommand must be created via NewFailStaleSegmentsCommand constructor",
)

// FailStaleSegmentsCommand triggers the sweep of in-progress segments whose
// courier stopped reporting locations. Each stale segment goes through the
// regular failure path, so the re-proposal budget and the cascade rules
// apply unchanged.
type FailStaleSegmentsCommand struct {
	guard guard.ConstructorGuard
}

// NewFailStaleSegmentsCommand creates a new sweep trigger.
func NewFailStaleSegmentsCommand() FailStaleSegmentsCommand {
	return FailStaleSegmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c FailStaleSegmentsCommand) Validate() error {
	return c.guard.Validate(ErrFailStaleSegmentsCommandIsNotConstructed)
}
