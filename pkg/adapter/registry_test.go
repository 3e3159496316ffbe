package adapter

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	BaseSQLAdapter
}

func (s *stubAdapter) Connect(context.Context, Config) error { return nil }

func (s *stubAdapter) ListTables(context.Context, string) ([]string, error) { return nil, nil }

func (s *stubAdapter) GetTableMetadata(context.Context, string, string) (*Metadata, error) {
	return nil, nil
}

func (s *stubAdapter) DefaultSchema() string { return "stub" }

func TestRegisterAndOpen(t *testing.T) {
	Register("Stub-Test", func(l *slog.Logger) Adapter { return &stubAdapter{BaseSQLAdapter: NewBase(l)} })

	_, ok := Lookup("STUB-TEST")
	assert.True(t, ok, "lookup ignores case")
	assert.Contains(t, Names(), "stub-test")

	a, err := Open(Config{Type: "stub-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", a.DefaultSchema())
}

func TestRegisterRejectsEmpty(t *testing.T) {
	assert.Panics(t, func() { Register("", func(*slog.Logger) Adapter { return &stubAdapter{} }) })
	assert.Panics(t, func() { Register("nil-factory", nil) })
	_, ok := Lookup("nil-factory")
	assert.False(t, ok)
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		unknown bool
		msg     string
	}{
		{name: "empty type", cfg: Config{}, msg: "adapter type not specified"},
		{name: "unknown type", cfg: Config{Type: "nope-db"}, unknown: true, msg: `"nope-db" (available: `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.cfg, nil)
			require.Error(t, err)
			assert.Equal(t, tt.unknown, errors.Is(err, ErrUnknownType))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNamesSorted(t *testing.T) {
	Register("zz-test", func(*slog.Logger) Adapter { return &stubAdapter{} })
	Register("aa-test", func(*slog.Logger) Adapter { return &stubAdapter{} })

	assert.IsNonDecreasing(t, Names())
}
