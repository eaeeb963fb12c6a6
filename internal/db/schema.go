package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferenceTable is the table read by the postgres preference source and
// written by scripts/seed_preferences.go.
const PreferenceTable = "CategoryPreference"

// ValidatePreferenceSchema checks that the preference table carries the
// columns the postgres source selects.
func ValidatePreferenceSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("database pool is nil")
	}

	for _, column := range []string{"key", "category", "score", "rank"} {
		ok, err := columnExists(ctx, pool, PreferenceTable, column)
		if err != nil {
			return fmt.Errorf("failed checking schema for %s.%s: %w", PreferenceTable, column, err)
		}
		if !ok {
			return fmt.Errorf(
				"required column %s.%s is missing; run scripts/seed_preferences.go",
				PreferenceTable,
				column,
			)
		}
	}
	return nil
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
