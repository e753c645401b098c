// Package postgres provides the GORM-based unit of work and repository
// wiring. A unit of work spans one business transaction; the chain, handover
// and chat repositories it hands out all run on the same transaction so the
// coordination invariants (claim linearization, handover settlement) commit
// or roll back as one.
package postgres

import (
	"context"

	"gorm.io/gorm"

	"partialdelivery/internal/adapters/out/postgres/chatrepo"
	"partialdelivery/internal/adapters/out/postgres/deliveryrepo"
	"partialdelivery/internal/adapters/out/postgres/handoverrepo"
	"partialdelivery/internal/core/ports"
)

// GormUnitOfWorkFactory creates UnitOfWork instances on a shared GORM
// connection. Each business operation gets a fresh instance so concurrent
// operations stay isolated.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates the factory. The connection is shared by
// every unit of work the factory produces.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a fresh unit of work with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction across the three
// repositories. Begin is idempotent; Commit and Rollback close the
// transaction. Rollback after a successful Commit is a no-op, which lets
// handlers keep it in a defer.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin starts the transaction. Calling Begin on an already started unit of
// work does not nest a second transaction.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}
	return nil
}

// Commit finalizes all changes of the transaction.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. On an already committed or never
// started unit of work it returns nil so deferred rollbacks stay silent.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return nil
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// conn returns the active transaction, or the bare connection when no
// transaction was started.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// PartialDeliveryRepository returns the chain repository bound to the
// current transaction.
func (uow *GormUnitOfWork) PartialDeliveryRepository() ports.PartialDeliveryRepository {
	return deliveryrepo.NewGormPartialDeliveryRepository(uow.conn())
}

// HandoverRepository returns the handover repository bound to the current
// transaction.
func (uow *GormUnitOfWork) HandoverRepository() ports.HandoverRepository {
	return handoverrepo.NewGormHandoverRepository(uow.conn())
}

// ChatRepository returns the chat repository bound to the current
// transaction.
func (uow *GormUnitOfWork) ChatRepository() ports.ChatRepository {
	return chatrepo.NewGormChatRepository(uow.conn())
}
