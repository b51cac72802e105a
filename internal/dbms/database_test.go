package dbms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabewaldrop/pagedb/internal/config"
	"github.com/cabewaldrop/pagedb/internal/schema"
	"github.com/cabewaldrop/pagedb/internal/storage"
	"github.com/cabewaldrop/pagedb/internal/value"
)

func usersColumns() []schema.ColumnDef {
	return []schema.ColumnDef{
		schema.NewColumnDef("id", schema.Int(0), true, true, true),
		schema.NewColumnDef("name", schema.Varchar(32), false, false, false),
	}
}

func TestDatabaseCreateAndDropTable(t *testing.T) {
	db, err := openDatabase(t.TempDir(), "default", config.New())
	require.NoError(t, err)

	require.NoError(t, db.CreateTable("users", usersColumns()))
	require.Contains(t, db.ListTables(), "users")

	err = db.CreateTable("users", usersColumns())
	require.Error(t, err)

	require.NoError(t, db.DropTable("users"))
	require.NotContains(t, db.ListTables(), "users")
}

func TestDatabaseInsertUpdateDeleteRoundTrip(t *testing.T) {
	db, err := openDatabase(t.TempDir(), "default", config.New())
	require.NoError(t, err)
	require.NoError(t, db.CreateTable("users", usersColumns()))

	id, err := db.InsertRecord("users", []value.Value{value.Int(1), value.Str("ada")})
	require.NoError(t, err)

	newID, err := db.UpdateRecord("users", id, []value.Value{value.Int(1), value.Str("ada lovelace")})
	require.NoError(t, err)

	var seen []value.Value
	require.NoError(t, db.ScanTable("users", func(_ storage.RecordId, values []value.Value) error {
		seen = values
		return nil
	}))
	require.Equal(t, value.Str("ada lovelace"), seen[1])

	require.NoError(t, db.DeleteRecord("users", newID))
}

func TestDatabasePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()

	db, err := openDatabase(dir, "default", cfg)
	require.NoError(t, err)
	require.NoError(t, db.CreateTable("users", usersColumns()))
	_, err = db.InsertRecord("users", []value.Value{value.Int(1), value.Str("ada")})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := openDatabase(dir, "default", cfg)
	require.NoError(t, err)
	require.Contains(t, reopened.ListTables(), "users")

	count := 0
	require.NoError(t, reopened.ScanTable("users", func(_ storage.RecordId, values []value.Value) error {
		count++
		return nil
	}))
	require.Equal(t, 1, count)
}
