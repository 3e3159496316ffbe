package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/pkg/adapter"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name: "basic connection",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: adapter.Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: adapter.Config{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "application name",
			config: adapter.Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Options:  map[string]string{"application_name": "leapbind"},
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable application_name=leapbind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestAdapter_UsesDollarPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`table_schema = \$1 AND table_name = \$2`).
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "integer", "NO", 1))
	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))

	adp := New(nil)
	adp.DB = db

	meta, err := adp.GetTableMetadata(context.Background(), "public", "users")
	require.NoError(t, err)
	require.Len(t, meta.Columns, 1)
	assert.True(t, meta.Columns[0].PrimaryKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_ListTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`table_schema = \$1`).
		WithArgs("reporting").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("daily"))

	adp := New(nil)
	adp.DB = db

	tables, err := adp.ListTables(context.Background(), "reporting")
	require.NoError(t, err)
	assert.Equal(t, []string{"daily"}, tables)
}

func TestRegistered(t *testing.T) {
	a, err := adapter.Open(adapter.Config{Type: "postgres"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "public", a.DefaultSchema())
}
