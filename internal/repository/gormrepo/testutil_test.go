package gormrepo

import (
	"fmt"
	"strings"
	"testing"

	"feastiq/internal/config"
	"feastiq/pkg/db"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// newTestDB открывает отдельную sqlite базу в памяти для каждого теста.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := db.NewGormConnection(config.DBConfig{Driver: db.DriverSQLite, DSN: dsn}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
