package db

import (
	"context"
	"io"
	"log/slog"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractAndReplaceDBName(t *testing.T) {
	cases := []struct {
		in, name, replaced string
	}{
		{"postgres://u:p@localhost:5432/solifin?sslmode=disable", "solifin", "postgres://u:p@localhost:5432/postgres?sslmode=disable"},
		{"host=localhost dbname=solifin user=u", "solifin", "host=localhost dbname=postgres user=u"},
	}
	for _, tc := range cases {
		name, err := extractDBName(tc.in)
		if err != nil || name != tc.name {
			t.Fatalf("extractDBName(%q) = %q, %v", tc.in, name, err)
		}
		replaced, err := replaceDBName(tc.in, "postgres")
		if err != nil || replaced != tc.replaced {
			t.Fatalf("replaceDBName(%q) = %q, %v", tc.in, replaced, err)
		}
	}
	if _, err := extractDBName("host=localhost"); err == nil {
		t.Fatalf("expected error without dbname")
	}
}

func TestEnsureDatabaseCreatesMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM pg_database").WithArgs("solifin").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(`CREATE DATABASE "solifin"`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ensureDatabase(context.Background(), db, "solifin", discard()); err != nil {
		t.Fatalf("ensureDatabase: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureDatabaseToleratesRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM pg_database").WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec("CREATE DATABASE").WillReturnError(&pq.Error{Code: "42P04"})

	if err := ensureDatabase(context.Background(), db, "solifin", discard()); err != nil {
		t.Fatalf("ensureDatabase: %v", err)
	}
}

func TestEnsureDatabaseExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM pg_database").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	if err := ensureDatabase(context.Background(), db, "solifin", discard()); err != nil {
		t.Fatalf("ensureDatabase: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
