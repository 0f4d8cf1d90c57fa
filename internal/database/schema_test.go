package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// countingDriver reflects canned schemas and counts reflections.
type countingDriver struct {
	mu       sync.Mutex
	reflects int
	tables   map[string]*TableSchema
}

func (d *countingDriver) Connect(ctx context.Context, dsn string) error { return nil }
func (d *countingDriver) Close() error                                  { return nil }
func (d *countingDriver) Ping(ctx context.Context) error                { return nil }
func (d *countingDriver) Dialect() Dialect                              { return DialectMySQL }
func (d *countingDriver) DatabaseName() string                          { return "test" }

func (d *countingDriver) Query(ctx context.Context, query string, args ...any) (*RowSet, error) {
	return &RowSet{}, nil
}

func (d *countingDriver) InTx(ctx context.Context, fn func(q Querier) error) error {
	return fn(d)
}

func (d *countingDriver) TableSchema(ctx context.Context, table string) (*TableSchema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reflects++
	schema, ok := d.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %q not found", table)
	}
	return schema, nil
}

func TestSchemaCacheReflectsOnce(t *testing.T) {
	driver := &countingDriver{
		tables: map[string]*TableSchema{
			"payment": {Name: "payment", Columns: []Column{{Name: "id", IsPrimary: true}}},
		},
	}
	cache := NewSchemaCache(driver)
	ctx := context.Background()

	first, err := cache.Table(ctx, "payment")
	if err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	second, err := cache.Table(ctx, "payment")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}

	if first != second {
		t.Error("cache returned different schema instances for the same table")
	}
	if driver.reflects != 1 {
		t.Errorf("expected 1 reflection, got %d", driver.reflects)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 cached table, got %d", cache.Len())
	}
}

func TestSchemaCacheErrorNotCached(t *testing.T) {
	driver := &countingDriver{tables: map[string]*TableSchema{}}
	cache := NewSchemaCache(driver)
	ctx := context.Background()

	if _, err := cache.Table(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown table")
	}
	if cache.Len() != 0 {
		t.Errorf("failed reflection must not be cached, got %d entries", cache.Len())
	}
}

func TestSchemaCacheConcurrentAccess(t *testing.T) {
	driver := &countingDriver{
		tables: map[string]*TableSchema{
			"lesson": {Name: "lesson"},
		},
	}
	cache := NewSchemaCache(driver)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Table(context.Background(), "lesson"); err != nil {
				t.Errorf("concurrent lookup failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if driver.reflects != 1 {
		t.Errorf("expected a single reflection under contention, got %d", driver.reflects)
	}
}
