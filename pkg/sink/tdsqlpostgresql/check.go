package tdsqlpostgresql

import (
	"context"
	"time"

	"github.com/goliatone/go-sinkform/pkg/postgres"
)

// DSN builds the pgx connection string for cfg.
func (c SinkConfig) DSN() (string, error) {
	parsed, err := postgres.ParseJDBCURL(c.JDBCURL)
	if err != nil {
		return "", err
	}
	return parsed.DSN(c.Username, c.Password), nil
}

// CheckConnection verifies that cfg's credentials reach its database.
func CheckConnection(ctx context.Context, cfg SinkConfig, timeout time.Duration) error {
	dsn, err := cfg.DSN()
	if err != nil {
		return err
	}
	return postgres.CheckConnection(ctx, dsn, timeout)
}

// Open connects a client for resource creation.
func Open(ctx context.Context, cfg SinkConfig) (*postgres.Client, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return postgres.New(ctx, dsn)
}
