package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and tracks aggregate changes.
// Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction. Rolling back a
	// committed or never started unit of work is a no-op, so handlers may
	// keep Rollback in a defer.
	Rollback(ctx context.Context) error

	// PartialDeliveryRepository returns a PartialDeliveryRepository bound to
	// the current transaction. Repository will use the transaction started
	// by Begin().
	PartialDeliveryRepository() PartialDeliveryRepository

	// HandoverRepository returns a HandoverRepository bound to the current
	// transaction.
	HandoverRepository() HandoverRepository

	// ChatRepository returns a ChatRepository bound to the current
	// transaction.
	ChatRepository() ChatRepository
}
