package testutil

import (
	"context"
	"database/sql"
	"testing"
	"wholefoods-scraper/lib/telemetry"

	_ "modernc.org/sqlite"
)

// SetupLogging installs the default slog handler, debug output is only shown
// when tests run with -v.
func SetupLogging(t testing.TB) {
	t.Helper()
	telemetry.InitSlog(testing.Verbose())
}

type Migration func(ctx context.Context, db *sql.DB) error

// MemoryDB opens a private :memory: sqlite database, applies `migrate` (if not
// nil) and closes the database when the test ends.
func MemoryDB(t testing.TB, migrate Migration) *sql.DB {
	t.Helper()

	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// each connection to :memory: would otherwise get its own database
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if migrate != nil {
		err = migrate(context.Background(), database)
		if err != nil {
			t.Fatal(err)
		}
	}
	return database
}
