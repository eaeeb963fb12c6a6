package recommend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"matjip/apps/backend/internal/logging"
)

// Source produces a preference table. Implementations are called at most once
// per Provider.
type Source interface {
	Load(ctx context.Context) (Table, error)
}

// FileSource reads the preference table from a JSON document whose top-level
// keys are composite keys and whose values are lists of {category, score}.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) (Table, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Str("path", s.Path).Msg("preference data file not found; using empty table")
		return Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preference data %s: %w", s.Path, err)
	}

	table := Table{}
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode preference data %s: %w", s.Path, err)
	}
	return table, nil
}

// PostgresSource reads the table from "CategoryPreference", populated by
// scripts/seed_preferences.go.
type PostgresSource struct {
	Pool *pgxpool.Pool
}

func (s PostgresSource) Load(ctx context.Context) (Table, error) {
	if s.Pool == nil {
		return nil, errors.New("preference database pool is nil")
	}
	rows, err := s.Pool.Query(
		ctx,
		`SELECT key, category, score FROM "CategoryPreference" ORDER BY key, rank`,
	)
	if err != nil {
		return nil, fmt.Errorf("query preference table: %w", err)
	}
	defer rows.Close()

	table := Table{}
	for rows.Next() {
		var key string
		var entry Entry
		if err := rows.Scan(&key, &entry.Category, &entry.Score); err != nil {
			return nil, fmt.Errorf("scan preference row: %w", err)
		}
		table[key] = append(table[key], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read preference rows: %w", err)
	}
	return table, nil
}

// StaticSource serves an in-memory table.
type StaticSource Table

func (s StaticSource) Load(_ context.Context) (Table, error) {
	return Table(s), nil
}
