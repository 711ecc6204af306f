package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/pkg/config"
	"github.com/zatekoja/facilities-collector/pkg/retry"
)

// Client represents a PostgreSQL database client
type Client struct {
	db     *sql.DB
	schema string
}

// NewClient creates a new PostgreSQL client with exponential backoff retry
func NewClient(ctx context.Context, name string, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", name, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = retry.DoWithLog(
		ctx,
		retry.DefaultConfig(),
		name,
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Str("database", name).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("database connection failed")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s after retries: %w", name, err)
	}

	log.Info().Str("database", name).Msg("connected to PostgreSQL")
	return NewClientFromDB(db, cfg.Schema), nil
}

// NewClientFromDB wraps an already opened connection pool
func NewClientFromDB(db *sql.DB, schema string) *Client {
	return &Client{db: db, schema: schema}
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Schema returns the schema holding the client's tables
func (c *Client) Schema() string {
	return c.schema
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// BeginTx starts a new transaction
func (c *Client) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
