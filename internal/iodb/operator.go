// Package iodb implements database operations on MySQL using
// database/sql and the go-sql-driver/mysql driver.
// This is an impure I/O package that implements contracts
// defined in pkg/.
package iodb

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/db"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/go-sql-driver/mysql"
)

// mysqlOperator implements db.Operator interface using
// the database/sql connection pool.
type mysqlOperator struct {
	db *sql.DB
}

// NewMySQLOperator creates a new database operator
// (without connecting).
func NewMySQLOperator() db.Operator {
	return &mysqlOperator{}
}

// DSN builds a go-sql-driver/mysql data source name from the
// configuration.
func DSN(cfg *config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
	mc.DBName = cfg.Database
	mc.Params = map[string]string{
		"foreign_key_checks": "0",
	}
	return mc.FormatDSN()
}

// Connect opens a connection pool to MySQL bounded by
// MaxConnections and verifies it with a ping.
func (m *mysqlOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	pool, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return NewConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	pool.SetMaxOpenConns(cfg.MaxConnections)
	pool.SetMaxIdleConns(min(cfg.MaxConnections, 10))
	pool.SetConnMaxLifetime(0) // No lifetime limit

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return NewConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	m.db = pool
	return nil
}

// Close releases all database connections.
func (m *mysqlOperator) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// DB returns the underlying connection pool.
func (m *mysqlOperator) DB() *sql.DB {
	return m.db
}

// DatabaseExists checks if a schema with the given name exists.
func (m *mysqlOperator) DatabaseExists(
	ctx context.Context,
	name string,
) (bool, error) {
	if m.db == nil {
		return false, NotConnectedError()
	}

	query := `
		SELECT COUNT(*)
		FROM information_schema.SCHEMATA
		WHERE SCHEMA_NAME = ?
	`

	var count int
	err := m.db.QueryRowContext(ctx, query, name).Scan(&count)
	if err != nil {
		return false, CheckExistsError(name, err)
	}

	return count > 0, nil
}

// CreateDatabase creates the database if it does not exist.
func (m *mysqlOperator) CreateDatabase(
	ctx context.Context,
	name string,
) error {
	if m.db == nil {
		return NotConnectedError()
	}

	q := "CREATE DATABASE IF NOT EXISTS " + subset.Ident(name)
	if _, err := m.db.ExecContext(ctx, q); err != nil {
		return CreateDatabaseError(name, err)
	}
	return nil
}

// DropDatabase drops the database if it exists.
func (m *mysqlOperator) DropDatabase(
	ctx context.Context,
	name string,
) error {
	if m.db == nil {
		return NotConnectedError()
	}

	q := "DROP DATABASE IF EXISTS " + subset.Ident(name)
	if _, err := m.db.ExecContext(ctx, q); err != nil {
		return DropDatabaseError(name, err)
	}
	return nil
}

// QueryIDs collects distinct non-null integer values returned by the
// first column of a query.
func (m *mysqlOperator) QueryIDs(
	ctx context.Context,
	query string,
) ([]int64, error) {
	if m.db == nil {
		return nil, NotConnectedError()
	}

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, QueryIDsError(query, err)
	}
	defer rows.Close()

	seen := make(map[int64]struct{})
	var res []int64
	for rows.Next() {
		var id sql.NullInt64
		if err := rows.Scan(&id); err != nil {
			return nil, QueryIDsError(query, err)
		}
		if !id.Valid {
			continue
		}
		if _, ok := seen[id.Int64]; ok {
			continue
		}
		seen[id.Int64] = struct{}{}
		res = append(res, id.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, QueryIDsError(query, err)
	}

	return res, nil
}
