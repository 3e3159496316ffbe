package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/pkg/adapter"
	"github.com/leapstack-labs/leapbind/pkg/core"
)

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: dbPath}))
			defer func() { _ = adp.Close() }()

			assert.True(t, adp.IsConnected())
			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_ConnectBadParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{
		Params: map[string]any{"unknown_key": true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duckdb params")
	assert.False(t, adp.IsConnected())
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.ListTables(ctx, "main")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)

	_, err = adp.GetTableMetadata(ctx, "main", "t")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
}

func TestAdapter_Introspection(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
	defer func() { _ = adp.Close() }()

	_, err := adp.DB.ExecContext(ctx, `
		CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR, balance DECIMAL(10, 2));
		CREATE TABLE accounts (id BIGINT NOT NULL, opened DATE);
	`)
	require.NoError(t, err)

	tables, err := adp.ListTables(ctx, adp.DefaultSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "users"}, tables)

	meta, err := adp.GetTableMetadata(ctx, "main", "users")
	require.NoError(t, err)
	require.Len(t, meta.Columns, 3)
	assert.Equal(t, "id", meta.Columns[0].Name)
	assert.Equal(t, "INTEGER", meta.Columns[0].Type)
	assert.False(t, meta.Columns[0].Nullable)
	assert.Equal(t, "name", meta.Columns[1].Name)
	assert.True(t, meta.Columns[1].Nullable)
	assert.Equal(t, "DECIMAL(10,2)", meta.Columns[2].Type)

	_, err = adp.GetTableMetadata(ctx, "main", "missing")
	assert.Error(t, err)
}

func TestSetupStatements(t *testing.T) {
	got := setupStatements(&Params{
		Extensions: []string{"json", " "},
		Settings:   map[string]string{"threads": "2", "memory_limit": "1GB"},
		Attach:     map[string]string{"lake": "/data/it's.duckdb"},
	})
	assert.Equal(t, []string{
		"INSTALL json",
		"LOAD json",
		"SET memory_limit = '1GB'",
		"SET threads = '2'",
		"ATTACH '/data/it''s.duckdb' AS lake (READ_ONLY)",
	}, got)

	assert.Empty(t, setupStatements(&Params{}))
}

func TestRegistered(t *testing.T) {
	_, ok := adapter.Lookup("DuckDB")
	assert.True(t, ok)
	a, err := adapter.Open(adapter.Config{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "main", a.DefaultSchema())
}
