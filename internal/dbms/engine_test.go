package dbms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabewaldrop/pagedb/internal/config"
)

func TestOpenCreatesDefaultDatabase(t *testing.T) {
	engine, err := Open(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, config.DefaultDatabaseName, engine.CurrentDatabaseName())
	require.Contains(t, engine.ListDatabases(), config.DefaultDatabaseName)
}

func TestCreateUseDropDatabase(t *testing.T) {
	engine, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, engine.CreateDatabase("analytics"))
	require.Contains(t, engine.ListDatabases(), "analytics")

	err = engine.CreateDatabase("analytics")
	require.Error(t, err)

	require.NoError(t, engine.UseDatabase("analytics"))
	cur, err := engine.CurrentDatabase()
	require.NoError(t, err)
	require.Equal(t, "analytics", cur.Name())

	require.NoError(t, engine.DropDatabase("analytics"))
	require.NotContains(t, engine.ListDatabases(), "analytics")

	_, err = engine.CurrentDatabase()
	require.Error(t, err)
}

func TestUseDatabaseUnknownFails(t *testing.T) {
	engine, err := Open(t.TempDir())
	require.NoError(t, err)
	require.Error(t, engine.UseDatabase("nope"))
}

func TestReopenHydratesExistingDatabases(t *testing.T) {
	dir := t.TempDir()

	engine, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, engine.CreateDatabase("analytics"))
	require.NoError(t, engine.Shutdown())

	reopened, err := Open(dir)
	require.NoError(t, err)
	require.Contains(t, reopened.ListDatabases(), "analytics")
	require.Contains(t, reopened.ListDatabases(), config.DefaultDatabaseName)
}
