// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"partialdelivery/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// DeliveryRepoFactory provides access to the partial delivery repository
	// within a transaction.
	DeliveryRepoFactory interface {
		PartialDeliveryRepository() ports.PartialDeliveryRepository
	}

	// HandoverRepoFactory provides access to the handover repository within
	// a transaction.
	HandoverRepoFactory interface {
		HandoverRepository() ports.HandoverRepository
	}

	// ChatRepoFactory provides access to the chat repository within a
	// transaction.
	ChatRepoFactory interface {
		ChatRepository() ports.ChatRepository
	}

	// DeliveryUoW manages transactions for partial-delivery-only operations.
	DeliveryUoW interface {
		TxManager
		DeliveryRepoFactory
	}

	// DeliveryUoWFactory creates new delivery unit of work instances.
	DeliveryUoWFactory interface {
		Create() DeliveryUoW
	}

	// ChatUoW manages transactions for chat-only operations.
	ChatUoW interface {
		TxManager
		ChatRepoFactory
	}

	// ChatUoWFactory creates new chat unit of work instances.
	ChatUoWFactory interface {
		Create() ChatUoW
	}

	// UoW manages transactions across delivery and handover aggregates.
	// Used for commands that coordinate segment progress with the handover
	// protocol.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   deliveryRepo := uow.PartialDeliveryRepository()
	//   handoverRepo := uow.HandoverRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DeliveryRepoFactory
		HandoverRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
