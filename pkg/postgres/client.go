// Package postgres is the PostgreSQL side of the sink: JDBC URL parsing,
// connection checks, table introspection and the DDL issued when a sink asks
// for its destination table to be created.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// ErrNoDatabase is returned when the DSN names no database.
var ErrNoDatabase = errors.New("postgres: must specify a database to connect to")

// DefaultConnectTimeout bounds CheckConnection when no timeout is given.
const DefaultConnectTimeout = 10 * time.Second

// Client wraps a pgx pool.
type Client struct {
	db  *pgxpool.Pool
	cfg *pgxpool.Config
}

// ClientOpt customises a Client's pool before it connects.
type ClientOpt func(cfg *pgxpool.Config)

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) ClientOpt {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = n
		}
	}
}

// New connects a pool to dsn. The pgx logger follows the level of the zap
// logger found in ctx.
func New(ctx context.Context, dsn string, opts ...ClientOpt) (*Client, error) {
	l := ctxzap.Extract(ctx)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if config.ConnConfig.Database == "" {
		return nil, ErrNoDatabase
	}

	config.ConnConfig.Logger = &Logger{}
	config.ConnConfig.LogLevel = PgxLevel(l.Level())
	for _, opt := range opts {
		opt(config)
	}

	db, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	l.Debug("postgres pool connected",
		zap.String("host", config.ConnConfig.Host),
		zap.String("database", config.ConnConfig.Database),
	)
	return &Client{db: db, cfg: config}, nil
}

// Database is the database the pool is connected to.
func (c *Client) Database() string {
	return c.cfg.ConnConfig.Database
}

// ValidateConnection pings the server.
func (c *Client) ValidateConnection(ctx context.Context) error {
	if err := c.db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close releases the pool.
func (c *Client) Close() {
	c.db.Close()
}

// CheckConnection connects to dsn, pings and disconnects within timeout.
func CheckConnection(ctx context.Context, dsn string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := New(ctx, dsn, WithMaxConns(1))
	if err != nil {
		return err
	}
	defer client.Close()

	return client.ValidateConnection(ctx)
}
