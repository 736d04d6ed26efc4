// Package sqlitetest opens migrated in-memory databases for tests.
package sqlitetest

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/database"
)

// New returns a fresh in-memory database with the full schema. The pool is a single
// connection, so transactions are serialized the way row locks serialize them on postgres.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger, time.Second))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, logger))
	return db
}
