package ports

import (
	"context"

	"partialdelivery/internal/core/domain/model/kernel"
)

// Role distinguishes the kinds of participants in a coordination room.
type Role string

const (
	RoleCourier    Role = "courier"
	RoleCustomer   Role = "customer"
	RoleDispatcher Role = "dispatcher"
)

// Participant is an authenticated coordination channel participant.
type Participant struct {
	ID   kernel.UUID
	Role Role
}

// IdentityResolver authenticates transport-level credentials into a
// participant identity.
type IdentityResolver interface {
	// Resolve validates the given credential token and returns the
	// participant it identifies.
	Resolve(ctx context.Context, token string) (Participant, error)
}
