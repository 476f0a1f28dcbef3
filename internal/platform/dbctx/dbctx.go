package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context to a repo call, plus the transaction
// when the call is part of an aggregate write.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

func WithTx(ctx context.Context, tx *gorm.DB) Context {
	return Context{Ctx: ctx, Tx: tx}
}

func (c Context) InTx() bool { return c.Tx != nil }

// DB picks the open transaction over fallback and binds the request context.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Tx != nil {
		return c.Tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
