package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// NewClickHouse opens a ClickHouse connection through the database/sql
// driver registered by clickhouse-go. The caller imports the driver blank.
func NewClickHouse(dsn string) (*DB, error) {
	conn, err := sqlx.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(10 * time.Minute)

	return &DB{conn: conn}, nil
}
