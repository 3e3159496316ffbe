package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name       string
		input      core.ObjectName
		wantSchema string
		wantTable  string
		wantErr    string
	}{
		{"bare name", core.ObjectName{"t"}, catalog.DefaultSchemaName, "t", ""},
		{"qualified", core.ObjectName{"sales", "events"}, "sales", "events", ""},
		{"three parts", core.ObjectName{"a", "b", "c"}, "", "", "invalid table name: [a b c]"},
		{"four parts", core.ObjectName{"a", "b", "c", "d"}, "", "", "invalid table name: [a b c d]"},
		{"empty", core.ObjectName{}, "", "", "invalid table name: []"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, table, err := SplitName(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTableName)
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSchema, schema)
			assert.Equal(t, tt.wantTable, table)
		})
	}
}

func TestLowerCaseNameIdempotent(t *testing.T) {
	names := []core.ObjectName{
		{"Users"},
		{"SALES", "Events"},
		{"already", "lower"},
		{"ÄRGER", "Ölfeld"},
		{"Mixed_Case_123"},
	}
	for _, n := range names {
		t.Run(n.String(), func(t *testing.T) {
			once := LowerCaseName(n)
			assert.Equal(t, once, LowerCaseName(once))
			assert.Len(t, once, len(n))
		})
	}

	assert.Equal(t, core.ObjectName{"sales", "events"}, LowerCaseName(core.ObjectName{"SALES", "Events"}))
	assert.Equal(t, core.ObjectName{"ärger"}, LowerCaseName(core.ObjectName{"ÄRGER"}))
}

func TestLowerCaseNameDoesNotModifyInput(t *testing.T) {
	in := core.ObjectName{"Users"}
	_ = LowerCaseName(in)
	assert.Equal(t, "Users", in[0])
}
