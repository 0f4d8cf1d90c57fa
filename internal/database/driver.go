package database

import "context"

// Dialect identifies the SQL dialect spoken by a driver.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// Querier executes a statement and returns its result set.
// Both drivers and in-flight transactions satisfy it.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*RowSet, error)
}

// Driver defines the interface for database operations.
// All implementations must be safe for concurrent use.
type Driver interface {
	Querier

	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// InTx runs fn inside a transaction. The transaction is committed
	// when fn returns nil and rolled back otherwise; the underlying
	// connection is released on every exit path.
	InTx(ctx context.Context, fn func(q Querier) error) error

	// TableSchema reflects column metadata for a table.
	TableSchema(ctx context.Context, table string) (*TableSchema, error)

	// Dialect returns the SQL dialect of the driver.
	Dialect() Dialect

	// DatabaseName returns the name of the connected database.
	DatabaseName() string
}
