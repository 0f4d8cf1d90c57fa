package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/mfiorillo/ledgerlens/internal/database"
)

// Driver implements the database.Driver interface for MySQL, the
// engine the legacy schema lives on.
type Driver struct {
	db     *sql.DB
	dbName string
}

// New creates a new MySQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect opens a pooled connection to MySQL and verifies it.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return &database.ErrConnection{Cause: fmt.Errorf("parse dsn: %w", err)}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return &database.ErrConnection{Cause: err}
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &database.ErrConnection{Cause: fmt.Errorf("ping: %w", err)}
	}

	d.db = db
	d.dbName = cfg.DBName
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return &database.ErrConnection{Cause: fmt.Errorf("not connected")}
	}
	return d.db.PingContext(ctx)
}

// Query runs a SQL statement and returns the result as row mappings.
func (d *Driver) Query(ctx context.Context, query string, args ...any) (*database.RowSet, error) {
	if d.db == nil {
		return nil, &database.ErrConnection{Cause: fmt.Errorf("not connected")}
	}

	start := time.Now()

	rows, err := d.db.QueryContext(ctx, query, args...)
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
	if d.db == nil {
		return &database.ErrConnection{Cause: fmt.Errorf("not connected")}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &database.ErrConnection{Cause: fmt.Errorf("begin: %w", err)}
	}
	defer tx.Rollback()

	if err := fn(&txQuerier{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// txQuerier adapts a database/sql transaction to database.Querier.
type txQuerier struct {
	tx *sql.Tx
}

func (t *txQuerier) Query(ctx context.Context, query string, args ...any) (*database.RowSet, error) {
	start := time.Now()

	rows, err := t.tx.QueryContext(ctx, query, args...)
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

// TableSchema reflects column metadata from information_schema for a
// table in the connected database.
func (d *Driver) TableSchema(ctx context.Context, table string) (*database.TableSchema, error) {
	rows, err := d.db.QueryContext(ctx, queryGetColumns, table)
	if err != nil {
		return nil, &database.ErrQuery{Query: queryGetColumns, Cause: err}
	}
	defer rows.Close()

	schema := &database.TableSchema{Name: table}
	for rows.Next() {
		var col database.Column
		var nullable, key string
		var def sql.NullString
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &def, &col.OrdinalPos, &key); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.IsNullable = nullable == "YES"
		col.IsPrimary = key == "PRI"
		col.Default = def.String
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

// Dialect returns the MySQL dialect marker.
func (d *Driver) Dialect() database.Dialect {
	return database.DialectMySQL
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

func collectRows(rows *sql.Rows) (*database.RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("identify columns: %w", err)
	}

	pointers := make([]any, len(columns))
	values := make([]any, len(columns))

	set := &database.RowSet{Columns: columns}
	for rows.Next() {
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(database.Row, len(columns))
		for i, v := range values {
			// The MySQL driver hands back text columns as []byte.
			if b, ok := v.([]byte); ok {
				row[columns[i]] = string(b)
			} else {
				row[columns[i]] = v
			}
		}
		set.Rows = append(set.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	set.RowCount = len(set.Rows)
	return set, nil
}
