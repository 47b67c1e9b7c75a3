package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type recordingExec struct {
	sql []string
	err error
}

func (r *recordingExec) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	return pgconn.CommandTag{}, r.err
}

func TestValidateSchema(t *testing.T) {
	valid := []string{"public", "claims", "recovery_2024", "_staging", "A1B2"}
	for _, v := range valid {
		if err := ValidateSchema(v); err != nil {
			t.Errorf("expected %q to be valid: %v", v, err)
		}
	}

	invalid := []string{"", "1claims", "claims-prod", "claims; DROP TABLE claims", "a b", "x.y", "claims'"}
	for _, v := range invalid {
		if err := ValidateSchema(v); err == nil {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}

func TestSearchPath(t *testing.T) {
	if got := SearchPath("public"); got != "public" {
		t.Errorf("expected public, got %s", got)
	}
	if got := SearchPath("recovery"); got != "recovery, public" {
		t.Errorf("expected 'recovery, public', got %s", got)
	}
}

func TestEnsureSchema(t *testing.T) {
	rec := &recordingExec{}
	if err := EnsureSchema(context.Background(), rec, "recovery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.sql) != 1 || rec.sql[0] != "CREATE SCHEMA IF NOT EXISTS recovery" {
		t.Errorf("unexpected statements %v", rec.sql)
	}
}

func TestEnsureSchema_RejectsBeforeExecuting(t *testing.T) {
	rec := &recordingExec{}
	if err := EnsureSchema(context.Background(), rec, "bad;name"); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.sql) != 0 {
		t.Errorf("nothing should be executed, got %v", rec.sql)
	}
}

func TestEnsureSchema_WrapsError(t *testing.T) {
	boom := errors.New("permission denied")
	err := EnsureSchema(context.Background(), &recordingExec{err: boom}, "recovery")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
