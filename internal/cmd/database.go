package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func setupDatabase(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, config.databaseDSN())
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", config.Database.Host).
		Int("port", config.Database.Port).
		Str("database", config.Database.Name).
		Msg("connected to database")
	return pool, nil
}
