package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs the body without a real transaction and fails on
// demand at begin or commit. Calls counts every InTx invocation.
type InjectedTxRunner struct {
	FailBegin  error
	FailCommit error

	mu        sync.Mutex
	Calls     int
	Commits   int
	Rollbacks int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()
	if r.FailBegin != nil {
		return r.FailBegin
	}
	var err error
	if fn != nil {
		err = fn(dbctx.New(ctx))
	}
	if err == nil {
		err = r.FailCommit
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Rollbacks++
		return err
	}
	r.Commits++
	return nil
}
