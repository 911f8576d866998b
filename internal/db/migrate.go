package db

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the tables the services expect when they are missing.
func EnsureSchema(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, schema)
	return err
}
