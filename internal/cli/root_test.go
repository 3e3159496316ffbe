package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/internal/cli/config"
	"github.com/leapstack-labs/leapbind/internal/cli/testutil"
)

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	root := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommandMetadata(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "leapbind", root.Use)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	for _, flag := range []string{"config", "env", "catalog", "tables", "concurrency", "log-level", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"bind", "check", "catalog", "repl", "version", "completion"})
}

func TestRootBindWithProjectCatalog(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	out, _, err := executeRoot(t, "--config", filepath.Join(dir, "leapbind.yaml"), "bind", "SELECT name FROM customers WHERE id = 1")
	require.NoError(t, err)
	assert.Contains(t, out, "Table postgres.customers")
	assert.Contains(t, out, "customers.name")
}

func TestRootCheckProjectQueries(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	out, _, err := executeRoot(t, "--config", filepath.Join(dir, "leapbind.yaml"), "-o", "json", "check", filepath.Join(dir, "queries"))
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0]["ok"], results[0]["error"])
}

func TestRootCatalogFlagOverridesConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := executeRoot(t, "--config", filepath.Join(dir, "leapbind.yaml"), "--catalog", filepath.Join(dir, "missing.yaml"), "catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestRootInvalidOutput(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := executeRoot(t, "--config", filepath.Join(dir, "leapbind.yaml"), "-o", "xml", "catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := executeRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapbind")
}

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig(t.Context())
	assert.Equal(t, config.DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, config.DefaultConcurrency, cfg.Concurrency)
}
