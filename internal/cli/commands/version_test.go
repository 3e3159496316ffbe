package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	info := BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-02"}

	tests := []struct {
		name    string
		args    []string
		want    []string
		exact   string
		wantErr bool
	}{
		{
			name: "full",
			want: []string{"leapbind v1.2.3", "commit:   abc1234", "built:    2026-01-02", runtime.Version(), "adapters: "},
		},
		{
			name:  "short",
			args:  []string{"--short"},
			exact: "1.2.3\n",
		},
		{
			name:    "extra argument",
			args:    []string{"now"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tt.exact != "" {
				assert.Equal(t, tt.exact, buf.String())
			}
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
