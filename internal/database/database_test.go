package database_test

import (
	"path/filepath"
	"testing"

	"github.com/ndewijer/Dividend-Income-Projector/internal/database"
)

func TestOpen(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "dividends.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := database.HealthCheck(db); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	version, err := database.SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}

	// Migrating an up-to-date schema is a no-op.
	if err := database.Migrate(db); err != nil {
		t.Errorf("Migrate() error = %v", err)
	}

	for _, table := range []string{"dividend_declaration", "dividend_snapshot", "refresh_metadata"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s: %v", table, err)
		}
	}
}
