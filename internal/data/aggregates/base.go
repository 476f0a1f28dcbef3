package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

const (
	defaultMaxAttempts = 3
	retryBackoff       = 15 * time.Millisecond
)

// TxRunner opens the transaction an aggregate write runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r == nil || r.db == nil {
		return InvariantError("tx runner: nil db")
	}
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.WithTx(ctx, tx))
	})
}

// Outcome describes one finished aggregate write.
type Outcome struct {
	Op       string
	Status   string
	Attempts int
	Elapsed  time.Duration
}

type Hooks interface {
	Record(o Outcome)
}

type noopHooks struct{}

func (noopHooks) Record(Outcome) {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports outcomes to the rc_aggregate_* series.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) Record(o Outcome) {
	h.metrics.ObserveAggregateOperation(o.Op, o.Status, o.Elapsed)
	for i := 1; i < o.Attempts; i++ {
		h.metrics.IncAggregateRetry(o.Op)
	}
	switch o.Status {
	case "conflict":
		h.metrics.IncAggregateConflict(o.Op)
	case "retryable":
		h.metrics.IncAggregateRetry(o.Op)
	}
}

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	// MaxAttempts bounds how often a write is replayed after a transient
	// store error (lock timeout, serialization failure). Zero means 3.
	MaxAttempts int
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.MaxAttempts <= 0 {
		d.MaxAttempts = defaultMaxAttempts
	}
	return d
}

// executeWrite runs fn in a transaction, replaying the whole transaction when
// the store reports a transient failure. fn must not keep state between
// attempts.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	ctx, span := observability.Tracer().Start(ctx, op)
	start := time.Now()
	var (
		err      error
		attempts int
	)
	for attempts < deps.MaxAttempts {
		attempts++
		err = MapError(op, deps.Runner.InTx(ctx, fn))
		if Status(err) != "retryable" || ctx.Err() != nil || attempts == deps.MaxAttempts {
			break
		}
		deps.Log.Debug("retrying aggregate write", "op", op, "attempt", attempts, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(time.Duration(attempts) * retryBackoff):
		}
	}
	deps.Hooks.Record(Outcome{Op: op, Status: Status(err), Attempts: attempts, Elapsed: time.Since(start)})
	span.SetAttributes(attribute.Int("aggregate.attempts", attempts), attribute.String("aggregate.status", Status(err)))
	observability.EndSpan(span, err)
	return err
}
