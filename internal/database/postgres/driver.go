package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mfiorillo/ledgerlens/internal/database"
)

// Driver implements the database.Driver interface for PostgreSQL.
type Driver struct {
	pool   *pgxpool.Pool
	dbName string
}

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect establishes a connection pool to PostgreSQL.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return &database.ErrConnection{Cause: fmt.Errorf("parse dsn: %w", err)}
	}

	cfg.MaxConns = 5
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return &database.ErrConnection{Cause: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return &database.ErrConnection{Cause: fmt.Errorf("ping: %w", err)}
	}

	d.pool = pool
	d.dbName = cfg.ConnConfig.Database
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return &database.ErrConnection{Cause: fmt.Errorf("not connected")}
	}
	return d.pool.Ping(ctx)
}

// Query runs a SQL statement and returns the result as row mappings.
func (d *Driver) Query(ctx context.Context, query string, args ...any) (*database.RowSet, error) {
	if d.pool == nil {
		return nil, &database.ErrConnection{Cause: fmt.Errorf("not connected")}
	}

	start := time.Now()

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &database.ErrQuery{Query: query, Cause: err}
	}
	defer rows.Close()

	set, err := collectRows(rows)
	if err != nil {
		return nil, &database.ErrQuery{Query: query, Cause: err}
	}
	set.Duration = time.Since(start)
	return set, nil
}

// InTx runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise.
func (d *Driver) InTx(ctx context.Context, fn func(q database.Querier) error) error {
	if d.pool == nil {
		return &database.ErrConnection{Cause: fmt.Errorf("not connected")}
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return &database.ErrConnection{Cause: fmt.Errorf("begin: %w", err)}
	}
	defer tx.Rollback(ctx)

	if err := fn(&txQuerier{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// txQuerier adapts a pgx transaction to database.Querier.
type txQuerier struct {
	tx pgx.Tx
}

func (t *txQuerier) Query(ctx context.Context, query string, args ...any) (*database.RowSet, error) {
	start := time.Now()

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, &database.ErrQuery{Query: query, Cause: err}
	}
	defer rows.Close()

	set, err := collectRows(rows)
	if err != nil {
		return nil, &database.ErrQuery{Query: query, Cause: err}
	}
	set.Duration = time.Since(start)
	return set, nil
}

// TableSchema reflects column metadata for a table in the public schema.
func (d *Driver) TableSchema(ctx context.Context, table string) (*database.TableSchema, error) {
	rows, err := d.pool.Query(ctx, queryGetColumns, defaultSchema, table)
	if err != nil {
		return nil, &database.ErrQuery{Query: queryGetColumns, Cause: err}
	}
	defer rows.Close()

	schema := &database.TableSchema{Name: table}
	for rows.Next() {
		var col database.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Default, &col.OrdinalPos, &col.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.IsNullable = nullable == "YES"
		schema.Columns = append(schema.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schema.Columns) == 0 {
		return nil, fmt.Errorf("table %q not found", table)
	}
	return schema, nil
}

// Dialect returns the PostgreSQL dialect marker.
func (d *Driver) Dialect() database.Dialect {
	return database.DialectPostgres
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

func collectRows(rows pgx.Rows) (*database.RowSet, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	set := &database.RowSet{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(database.Row, len(values))
		for i, v := range values {
			row[columns[i]] = v
		}
		set.Rows = append(set.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	set.RowCount = len(set.Rows)
	return set, nil
}
