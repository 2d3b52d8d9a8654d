package db

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func TestMigrateURL(t *testing.T) {
	testCases := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{"postgres scheme", "postgres://u:p@localhost:5432/eventbuzz?sslmode=disable", "pgx5://u:p@localhost:5432/eventbuzz?sslmode=disable", false},
		{"postgresql scheme", "postgresql://localhost/eventbuzz", "pgx5://localhost/eventbuzz", false},
		{"already pgx5", "pgx5://localhost/eventbuzz", "pgx5://localhost/eventbuzz", false},
		{"keyword DSN", "host=localhost dbname=eventbuzz", "", true},
		{"other driver", "mysql://localhost/eventbuzz", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := migrateURL(tc.dsn)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("migrateURL(%q) = %q; want %q", tc.dsn, got, tc.want)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("first migration: %v", err)
	}
	if first != 1 {
		t.Errorf("first version = %d; want 1", first)
	}

	up, _, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("read up: %v", err)
	}
	_ = up.Close()

	down, _, err := src.ReadDown(first)
	if err != nil {
		t.Fatalf("read down: %v", err)
	}
	_ = down.Close()
}
