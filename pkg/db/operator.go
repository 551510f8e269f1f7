package db

import (
	"context"
	"database/sql"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
)

// Operator defines basic database management operations on the MySQL
// server that holds both the source and the target databases.
// It exposes the *sql.DB so that copy and introspection components can
// run their own statements on dedicated connections.
type Operator interface {
	// Connect opens a connection pool to the source database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the connection pool.
	Close() error

	// DB returns the underlying connection pool.
	DB() *sql.DB

	// DatabaseExists checks if a database with the given name exists on
	// the server.
	DatabaseExists(ctx context.Context, name string) (bool, error)

	// CreateDatabase creates a database if it does not exist.
	CreateDatabase(ctx context.Context, name string) error

	// DropDatabase drops a database if it exists.
	DropDatabase(ctx context.Context, name string) error

	// QueryIDs runs a query returning one integer column and collects
	// distinct non-null values.
	QueryIDs(ctx context.Context, query string) ([]int64, error)
}
