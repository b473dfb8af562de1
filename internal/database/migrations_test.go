package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationSourceEmbedded(t *testing.T) {
	files, err := PendingMigrations(MigrationSource(filepath.Join(t.TempDir(), "missing")))
	if err != nil {
		t.Fatalf("PendingMigrations: %v", err)
	}
	if len(files) == 0 || files[0] != "001_generation_logs.sql" || files[len(files)-1] != "002_webhook_deliveries.sql" {
		t.Fatalf("files = %v", files)
	}
}

func TestMigrationSourceDirectoryOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := PendingMigrations(MigrationSource(dir))
	if err != nil {
		t.Fatalf("PendingMigrations: %v", err)
	}
	if len(files) != 2 || files[0] != "001_a.sql" || files[1] != "002_b.sql" {
		t.Fatalf("files = %v", files)
	}
}
