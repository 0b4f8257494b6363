package postgres

import (
	"context"
	_ "embed"
	"strings"
)

//go:embed migrations/auth_schema.sql
var authSchemaSQL string

//go:embed migrations/history_schema.sql
var historySchemaSQL string

// MigrateAuth ensures the tables required by the auth service exist.
func (db *Database) MigrateAuth(ctx context.Context) error {
	return db.applySchema(ctx, authSchemaSQL)
}

// MigrateHistory ensures the tables required by the history service exist.
func (db *Database) MigrateHistory(ctx context.Context) error {
	return db.applySchema(ctx, historySchemaSQL)
}

func (db *Database) applySchema(ctx context.Context, schema string) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
