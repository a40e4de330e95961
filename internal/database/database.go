// Package database opens the PostgreSQL connection pool and applies schema migrations.
package database

import (
	"context"
	"fmt"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mapcandy-api/internal/logger"
)

// Connect creates a pgx pool for dsn, wires SQL tracing into zerolog and pings
// the server so an unreachable database fails at startup.
func Connect(ctx context.Context, dsn string, pingTimeout time.Duration) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: failed to parse pool config: %w", err)
	}

	poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   pgxzero.NewLogger(log.Logger.With().Str("component", "pgx").Logger()),
		LogLevel: logger.PgxTraceLevel(zerolog.GlobalLevel()),
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("database: failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: failed to ping: %w", err)
	}

	log.Info().Str("host", poolConfig.ConnConfig.Host).Str("database", poolConfig.ConnConfig.Database).Msg("connected to the database")
	return pool, nil
}
