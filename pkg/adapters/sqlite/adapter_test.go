package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/pkg/adapter"
	"github.com/leapstack-labs/leapbind/pkg/core"
)

func connected(t *testing.T) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })

	_, err := adp.DB.Exec(`
		CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(40) NOT NULL, score REAL, joined DATE);
		CREATE TABLE orders (id BIGINT, amount DECIMAL(10, 2), note);
		CREATE VIEW big_orders AS SELECT id FROM orders WHERE amount > 100;
	`)
	require.NoError(t, err)
	return adp
}

func TestAdapter_ListTables(t *testing.T) {
	adp := connected(t)

	tables, err := adp.ListTables(context.Background(), adp.DefaultSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"big_orders", "orders", "users"}, tables)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	adp := connected(t)

	meta, err := adp.GetTableMetadata(context.Background(), "main", "users")
	require.NoError(t, err)
	assert.Equal(t, []adapter.Column{
		{Name: "id", Type: "INTEGER", Nullable: false, PrimaryKey: true, Position: 1},
		{Name: "name", Type: "TEXT", Nullable: false, Position: 2},
		{Name: "score", Type: "DOUBLE", Nullable: true, Position: 3},
		{Name: "joined", Type: "DATE", Nullable: true, Position: 4},
	}, meta.Columns)

	meta, err = adp.GetTableMetadata(context.Background(), "main", "orders")
	require.NoError(t, err)
	assert.Equal(t, "BIGINT", meta.Columns[0].Type)
	assert.Equal(t, "DECIMAL(10, 2)", meta.Columns[1].Type)
	assert.Equal(t, "TEXT", meta.Columns[2].Type)

	_, err = adp.GetTableMetadata(context.Background(), "main", "missing")
	assert.EqualError(t, err, "table main.missing not found")
}

func TestAdapter_NotConnected(t *testing.T) {
	adp := New(nil)
	_, err := adp.ListTables(context.Background(), "main")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
	_, err = adp.GetTableMetadata(context.Background(), "main", "x")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
}

func TestSQLiteType(t *testing.T) {
	tests := []struct {
		declared string
		want     string
	}{
		{"", "TEXT"},
		{"int", "INTEGER"},
		{"MEDIUMINT", "INTEGER"},
		{"bigint", "BIGINT"},
		{"nvarchar(20)", "TEXT"},
		{"clob", "TEXT"},
		{"float", "DOUBLE"},
		{"double precision", "DOUBLE"},
		{"numeric(8,3)", "NUMERIC(8,3)"},
		{"boolean", "BOOLEAN"},
		{"blob", "BLOB"},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteType(tt.declared))
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"main"`, quoteIdent("main"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestRegistered(t *testing.T) {
	_, ok := adapter.Lookup("sqlite")
	assert.True(t, ok)
}
