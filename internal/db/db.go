package db

import (
	"context"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "matjip-curator"

var supportedPGQueryKeys = map[string]struct{}{
	"application_name":     {},
	"channel_binding":      {},
	"client_encoding":      {},
	"connect_timeout":      {},
	"host":                 {},
	"sslcert":              {},
	"sslkey":               {},
	"sslmode":              {},
	"sslpassword":          {},
	"sslrootcert":          {},
	"target_session_attrs": {},
}

// Connect opens a pool on rawURL. Every session is read-only: the preference
// table is the only thing the server reads, and nothing writes to it at
// runtime.
func Connect(ctx context.Context, rawURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(normalizeDatabaseURL(rawURL))
	if err != nil {
		return nil, err
	}
	configureReadOnly(cfg)
	return pgxpool.NewWithConfig(ctx, cfg)
}

// ConnectWritable opens a pool without the read-only session default. Only
// the seed script uses it.
func ConnectWritable(ctx context.Context, rawURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(normalizeDatabaseURL(rawURL))
	if err != nil {
		return nil, err
	}
	setApplicationName(cfg)
	return pgxpool.NewWithConfig(ctx, cfg)
}

func configureReadOnly(cfg *pgxpool.Config) {
	setApplicationName(cfg)
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
}

func setApplicationName(cfg *pgxpool.Config) {
	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if strings.TrimSpace(cfg.ConnConfig.RuntimeParams["application_name"]) == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
}

func normalizeDatabaseURL(rawURL string) string {
	normalized := strings.TrimSpace(rawURL)
	if strings.HasPrefix(normalized, "postgresql+psycopg://") {
		normalized = strings.Replace(normalized, "postgresql+psycopg://", "postgres://", 1)
	}
	if strings.HasPrefix(normalized, "postgresql://") {
		normalized = strings.Replace(normalized, "postgresql://", "postgres://", 1)
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	if parsed.Scheme != "postgres" {
		return normalized
	}

	filtered := make(url.Values)
	for key, values := range parsed.Query() {
		if _, ok := supportedPGQueryKeys[key]; ok {
			for _, v := range values {
				filtered.Add(key, v)
			}
		}
	}
	parsed.RawQuery = filtered.Encode()
	return parsed.String()
}
