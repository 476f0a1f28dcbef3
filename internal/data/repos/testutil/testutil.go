package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/recharge-backend/internal/data/db"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

// Logger is shared by every test in the process.
var Logger = func() func(testing.TB) *logger.Logger {
	var (
		once sync.Once
		l    *logger.Logger
		err  error
	)
	return func(tb testing.TB) *logger.Logger {
		tb.Helper()
		once.Do(func() { l, err = logger.New("test") })
		if err != nil {
			tb.Fatalf("logger: %v", err)
		}
		return l
	}
}()

// SQLiteDSN names a private shared-cache in-memory database.
func SQLiteDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
}

// DB opens a migrated in-memory store through the same path the server
// uses. It is closed when tb ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	svc, err := dbpkg.Open(logger.Nop(), dbpkg.Options{Driver: dbpkg.DriverSQLite, SQLitePath: SQLiteDSN()})
	if err != nil {
		tb.Fatalf("open store: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	if err := dbpkg.Migrate(svc.DB()); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return svc.DB()
}

func Ctx(tb testing.TB) dbctx.Context {
	tb.Helper()
	return dbctx.New(context.Background())
}
