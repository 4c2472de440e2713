package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-sinkform/pkg/sink/tdsqlpostgresql"
)

// ConnectionChecker verifies that the credentials in values reach the sink's
// storage.
type ConnectionChecker func(ctx context.Context, kind string, values map[string]any, timeout time.Duration) error

// DefaultChecker dials the database of a TDSQL-PostgreSQL sink. Other sink
// types report 501.
func DefaultChecker(ctx context.Context, kind string, values map[string]any, timeout time.Duration) error {
	if kind != tdsqlpostgresql.Type {
		return StatusError{Code: http.StatusNotImplemented, Err: fmt.Errorf("server: %s has no connection check", kind)}
	}
	cfg, err := tdsqlpostgresql.DecodeConfig(values)
	if err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}
	if _, err := cfg.DSN(); err != nil {
		return StatusError{Code: http.StatusUnprocessableEntity, Err: err}
	}
	return tdsqlpostgresql.CheckConnection(ctx, cfg, timeout)
}
