package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feastiq/internal/config"
	"feastiq/internal/model"
	"feastiq/internal/repository/gormrepo"
	"feastiq/internal/service/export"
	"feastiq/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// setupEnv направляет базу во временный файл.
func setupEnv(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "reservations.db")
	t.Setenv("DB_DRIVER", db.DriverSQLite)
	t.Setenv("DB_DSN", dsn)
	t.Setenv("SESSION_SECRET", "test-secret")
	return dsn
}

// newTestCLI - новый экземпляр команд на каждый запуск, логи выводятся в тест.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New()
	c.newLogger = func(string, ...string) (*zap.Logger, error) {
		return zaptest.NewLogger(t), nil
	}
	return c
}

func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetErr(&out)
	c.rootCmd.SetArgs(args)
	err := c.rootCmd.Execute()
	return out.String(), err
}

func seedReservations(t *testing.T, dsn string, names ...string) {
	t.Helper()
	gdb, err := db.NewGormConnection(config.DBConfig{Driver: db.DriverSQLite, DSN: dsn}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close(gdb)
	require.NoError(t, gormrepo.Migrate(gdb))

	repo := gormrepo.NewReservationRepository(gdb)
	for _, name := range names {
		require.NoError(t, repo.CreateReservation(context.Background(), &model.Reservation{
			Name: name, Guests: "2", Message: "hi",
		}, nil))
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, newTestCLI(t), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "feastiq version "+Version))
}

func TestExport_Stdout(t *testing.T) {
	dsn := setupEnv(t)
	seedReservations(t, dsn, "Ana", "Bo")

	out, err := run(t, newTestCLI(t), "export")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.TrimSuffix(export.Header, "\n"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `Ana,,,2,,,"hi",`))
	assert.True(t, strings.HasPrefix(lines[2], `Bo,,,2,,,"hi",`))
}

func TestExport_File(t *testing.T) {
	dsn := setupEnv(t)
	seedReservations(t, dsn, "Ana")

	path := filepath.Join(t.TempDir(), "out.csv")
	out, err := run(t, newTestCLI(t), "export", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), export.Header+"Ana,"))
}

func TestMissingExplicitEnvFileFails(t *testing.T) {
	setupEnv(t)

	_, err := run(t, newTestCLI(t), "--env-file", filepath.Join(t.TempDir(), "missing.env"), "export")
	assert.Error(t, err)
}

func TestAdminCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, newTestCLI(t), "admin", "add", "maria", "--password", "s3cret-pass")
	require.NoError(t, err)
	assert.Contains(t, out, `admin "maria" created`)

	_, err = run(t, newTestCLI(t), "admin", "add", "maria", "--password", "s3cret-pass")
	assert.Error(t, err, "duplicate username")

	_, err = run(t, newTestCLI(t), "admin", "add", "anton", "--password", "short")
	assert.Error(t, err, "weak password")

	_, err = run(t, newTestCLI(t), "admin", "add", "anton")
	assert.Error(t, err, "password flag is required")

	out, err = run(t, newTestCLI(t), "admin", "passwd", "maria", "--password", "another-pass")
	require.NoError(t, err)
	assert.Contains(t, out, `password for "maria" updated`)

	_, err = run(t, newTestCLI(t), "admin", "passwd", "ghost", "--password", "another-pass")
	assert.Error(t, err)

	out, err = run(t, newTestCLI(t), "admin", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "maria")
	assert.Contains(t, out, "never")
	assert.NotContains(t, out, "anton")
}
