package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ConnectOptions holds the ClickHouse connection settings.
type ConnectOptions struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Addr returns the host:port pair for the native protocol.
func (o ConnectOptions) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// Connect opens a database/sql handle to ClickHouse and verifies it with
// a ping. The caller owns the returned handle.
func Connect(ctx context.Context, opts ConnectOptions) (*sql.DB, error) {
	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{opts.Addr()},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.User,
			Password: opts.Password,
		},
		DialTimeout: 10 * time.Second,
	})

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to ClickHouse at %s: %w", opts.Addr(), err)
	}
	return db, nil
}
