package database

import (
	"context"
	"sync"
)

// SchemaCache reflects tables by name on first access and serves the
// cached metadata thereafter. Entries are never invalidated within a
// process lifetime.
type SchemaCache struct {
	mu     sync.RWMutex
	driver Driver
	tables map[string]*TableSchema
}

// NewSchemaCache creates an empty cache backed by driver.
func NewSchemaCache(driver Driver) *SchemaCache {
	return &SchemaCache{
		driver: driver,
		tables: make(map[string]*TableSchema),
	}
}

// Table returns the reflected schema for the named table, reflecting
// it through the driver on first access.
func (c *SchemaCache) Table(ctx context.Context, name string) (*TableSchema, error) {
	c.mu.RLock()
	schema, ok := c.tables[name]
	c.mu.RUnlock()
	if ok {
		return schema, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have reflected the table while we waited.
	if schema, ok := c.tables[name]; ok {
		return schema, nil
	}

	schema, err := c.driver.TableSchema(ctx, name)
	if err != nil {
		return nil, err
	}
	c.tables[name] = schema
	return schema, nil
}

// Len returns the number of cached tables.
func (c *SchemaCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
