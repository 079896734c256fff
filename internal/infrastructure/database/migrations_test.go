package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/nerrad567/biosignal-hal/migrations"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_first.up.sql":    {Data: []byte("CREATE TABLE first (id INTEGER PRIMARY KEY);")},
		"20260102_000000_second.up.sql":   {Data: []byte("CREATE TABLE second (id INTEGER PRIMARY KEY);")},
		"20260103_000000_orphan.down.sql": {Data: []byte("DROP TABLE nothing;")},
		"README.md":                       {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestLoadMigrations(t *testing.T) {
	got, err := LoadMigrations(testMigrations())
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (down file ignored)", len(got))
	}
	if got[0].Version != "20260101_000000" || got[0].Name != "first" || got[0].UpSQL == "" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Version != "20260102_000000" || got[1].Name != "second" {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestLoadMigrations_Nil(t *testing.T) {
	got, err := LoadMigrations(nil)
	if err != nil || got != nil {
		t.Errorf("LoadMigrations(nil) = %v, %v", got, err)
	}
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "first") || !tableExists(t, db, "second") {
		t.Fatal("migrated tables missing")
	}

	applied, pending, err := db.MigrationStatus(ctx, testMigrations())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied = %d, pending = %d, want 2/0", len(applied), len(pending))
	}

	// Idempotent
	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestMigrate_FailureRollsBackOnlyThatMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys := testMigrations()
	fsys["20260102_000000_second.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE broken (")}

	if err := db.Migrate(ctx, fsys); err == nil {
		t.Fatal("Migrate() should fail on broken SQL")
	}
	if !tableExists(t, db, "first") {
		t.Error("earlier migration should stay committed")
	}

	_, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "second" {
		t.Errorf("pending = %+v, want second", pending)
	}
}

func TestMigrate_EmbeddedSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "status_history") {
		t.Error("status_history table missing")
	}

	_, pending, err := db.MigrationStatus(ctx, migrations.FS)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}
