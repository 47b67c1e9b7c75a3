package db

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
)

var schemaPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateSchema rejects names that cannot be interpolated into SQL as a bare
// identifier.
func ValidateSchema(schema string) error {
	if !schemaPattern.MatchString(schema) {
		return fmt.Errorf("invalid schema name: %q", schema)
	}
	return nil
}

// SearchPath is the session search_path for schema.
func SearchPath(schema string) string {
	if schema == "public" {
		return "public"
	}
	return schema + ", public"
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates schema if it does not exist.
func EnsureSchema(ctx context.Context, db execer, schema string) error {
	if err := ValidateSchema(schema); err != nil {
		return err
	}
	if _, err := db.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	return nil
}
