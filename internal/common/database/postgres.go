// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"energy-agent/internal/common/config"

	_ "github.com/lib/pq"
)

// EnergyTable is the read-only measurement table queried by the executor.
const EnergyTable = "energy_data"

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB           *sql.DB
	queryTimeout time.Duration
}

// DatasetStats describes the measurements available for answering questions.
type DatasetStats struct {
	Rows  int64     `json:"rows"`
	First time.Time `json:"first_timestamp"`
	Last  time.Time `json:"last_timestamp"`
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewPostgresFromDB(db, config.GetDuration(cfg.QueryTimeout)), nil
}

// NewPostgresFromDB wraps an existing handle.
func NewPostgresFromDB(db *sql.DB, queryTimeout time.Duration) *PostgresClient {
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &PostgresClient{DB: db, queryTimeout: queryTimeout}
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// QueryTimeout bounds a single analytical query.
func (c *PostgresClient) QueryTimeout() time.Duration {
	return c.queryTimeout
}

// Stats reports the size and time span of the energy table.
func (c *PostgresClient) Stats(ctx context.Context) (DatasetStats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	var (
		stats       DatasetStats
		first, last sql.NullTime
	)
	err := c.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), MIN(timestamp), MAX(timestamp) FROM "+EnergyTable,
	).Scan(&stats.Rows, &first, &last)
	if err != nil {
		return DatasetStats{}, fmt.Errorf("energy dataset stats: %w", err)
	}
	stats.First = first.Time
	stats.Last = last.Time
	return stats, nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
