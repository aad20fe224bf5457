package ports

import "context"

// Tx is an opaque transaction handle owned by the store adapter (*gorm.DB for SQLite).
type Tx interface{}

// UnitOfWork runs fn in one store transaction: an error rolls back, nil commits.
// Repositories called with the ctx passed to fn join the transaction.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
