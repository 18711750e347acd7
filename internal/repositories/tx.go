package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"gorm.io/gorm"
)

type txKey struct{}

// ContextWithTx returns a context carrying tx. PostgreSQL repositories called
// with that context run their statements inside tx.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, if any.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// conn picks the transaction from ctx when present, otherwise db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Transactor runs fn inside a single database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormTransactor implements Transactor for PostgreSQL
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// InTx commits when fn returns nil and rolls back otherwise. A call made with a
// context that already carries a transaction joins it.
func (t *GormTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTx(ctx, tx))
	})
	return classifyPostgres("tx", err, apperror.Conflict)
}

// WithoutTx returns a context that no longer carries a transaction, for work
// that fans out over several goroutines.
func WithoutTx(ctx context.Context) context.Context {
	if _, ok := TxFromContext(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, (*gorm.DB)(nil))
}

// JoinsTx reports whether store runs its statements inside the transaction
// carried by ctx. Stores backed by something other than PostgreSQL implement
// JoinsTx() bool and return false.
func JoinsTx(store any) bool {
	if j, ok := store.(interface{ JoinsTx() bool }); ok {
		return j.JoinsTx()
	}
	return true
}
