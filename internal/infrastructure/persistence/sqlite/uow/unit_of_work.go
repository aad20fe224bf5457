package uow

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"section3/internal/errs"
	"section3/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm.
type UnitOfWork struct {
	db *gorm.DB
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithTx joins an outer transaction already carried by ctx instead of nesting.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if fn == nil {
		return errors.New("tx func is required")
	}
	if ports.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	if err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	}); err != nil {
		if errs.KindOf(err) != errs.KindUnknown {
			return err
		}
		return errs.Store(err, "run transaction")
	}
	return nil
}
