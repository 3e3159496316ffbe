package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/internal/cli/config"
	"github.com/leapstack-labs/leapbind/internal/cli/testutil"
	logutil "github.com/leapstack-labs/leapbind/internal/testutil"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

func testCatalog(t *testing.T) *catalog.RootCatalog {
	t.Helper()
	cat := catalog.New()
	_, err := cat.AddTable(catalog.DefaultSchemaName, "users", []catalog.ColumnDesc{
		catalog.NewColumnDesc("id", types.Int32.NotNull(), true),
		catalog.NewColumnDesc("name", types.String.Nullable(), false),
	})
	require.NoError(t, err)
	_, err = cat.AddTable(catalog.DefaultSchemaName, "orders", []catalog.ColumnDesc{
		catalog.NewColumnDesc("id", types.Int32.NotNull(), true),
		catalog.NewColumnDesc("user_id", types.Int32.Nullable(), false),
		catalog.NewColumnDesc("amount", types.NewDecimal(true, 10, 2), false),
	})
	require.NoError(t, err)
	return cat
}

func testContext(t *testing.T, tr *testutil.TestRenderer) *CommandContext {
	t.Helper()
	return &CommandContext{
		Cfg: &config.Config{
			Concurrency:   2,
			WatchDebounce: config.DefaultWatchDebounce,
		},
		Logger:   logutil.NewTestLogger(t),
		Catalog:  testCatalog(t),
		Renderer: tr.Renderer,
	}
}

func writeSQL(t *testing.T, dir, name, sql string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(sql), 0o600))
	return path
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		name  string
		use   string
		flags []string
	}{
		{name: "bind", use: "bind [SQL]", flags: []string{"file"}},
		{name: "check", use: "check PATH...", flags: []string{"watch"}},
		{name: "catalog", use: "catalog [TABLE...]", flags: []string{"columns"}},
		{name: "repl", use: "repl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var use, short string
			var lookup func(string) bool
			switch tt.name {
			case "bind":
				c := NewBindCommand()
				use, short, lookup = c.Use, c.Short, func(f string) bool { return c.Flags().Lookup(f) != nil }
			case "check":
				c := NewCheckCommand()
				use, short, lookup = c.Use, c.Short, func(f string) bool { return c.Flags().Lookup(f) != nil }
			case "catalog":
				c := NewCatalogCommand()
				use, short, lookup = c.Use, c.Short, func(f string) bool { return c.Flags().Lookup(f) != nil }
			case "repl":
				c := NewREPLCommand()
				use, short, lookup = c.Use, c.Short, func(f string) bool { return c.Flags().Lookup(f) != nil }
			}

			assert.Equal(t, tt.use, use)
			assert.NotEmpty(t, short, "Short should not be empty")
			for _, f := range tt.flags {
				assert.True(t, lookup(f), "flag %q should exist", f)
			}
		})
	}
}

func TestReadSQL(t *testing.T) {
	dir := t.TempDir()
	file := writeSQL(t, dir, "q.sql", "SELECT 1;")

	tests := []struct {
		name    string
		stdin   string
		file    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "argument", args: []string{"SELECT 2"}, want: "SELECT 2"},
		{name: "file", file: file, want: "SELECT 1;"},
		{name: "stdin", stdin: "SELECT 3", want: "SELECT 3"},
		{name: "both", args: []string{"SELECT 2"}, file: file, wantErr: "cannot use both"},
		{name: "empty stdin", stdin: "  \n", wantErr: "no SQL provided"},
		{name: "missing file", file: filepath.Join(dir, "nope.sql"), wantErr: "failed to read SQL file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSQL(strings.NewReader(tt.stdin), tt.file, tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunBind(t *testing.T) {
	tests := []struct {
		name     string
		renderer func() *testutil.TestRenderer
		sql      string
		contains []string
		wantErr  string
	}{
		{
			name:     "text tree",
			renderer: testutil.NewTestRendererText,
			sql:      "SELECT id, name FROM users WHERE id = 1",
			contains: []string{"Select", "Table postgres.users", "users.id"},
		},
		{
			name:     "markdown per statement",
			renderer: testutil.NewTestRendererMarkdown,
			sql:      "SELECT id FROM users; DELETE FROM orders WHERE amount > 10;",
			contains: []string{"## Statement 1: SELECT", "## Statement 2: DELETE", "```"},
		},
		{
			name:     "script with ddl sees created table",
			renderer: testutil.NewTestRendererText,
			sql:      "CREATE TABLE items (sku VARCHAR NOT NULL, qty INT); SELECT sku, qty FROM items;",
			contains: []string{"statement 1 (CREATE TABLE)", "statement 2 (SELECT)", "items.sku"},
		},
		{
			name:     "unknown column",
			renderer: testutil.NewTestRendererText,
			sql:      "SELECT nope FROM users",
			wantErr:  "invalid column",
		},
		{
			name:     "statement number in error",
			renderer: testutil.NewTestRendererText,
			sql:      "SELECT id FROM users; SELECT id FROM missing;",
			wantErr:  "statement 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.renderer()
			cc := testContext(t, tr)

			err := runBind(context.Background(), cc, tt.sql)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, tr.Output(), want)
			}
			testutil.AssertValidMarkdown(t, tr.Output())
		})
	}
}

func TestRunBindDDLDoesNotLeak(t *testing.T) {
	tr := testutil.NewTestRendererText()
	cc := testContext(t, tr)

	require.NoError(t, runBind(context.Background(), cc, "CREATE TABLE items (sku VARCHAR); SELECT sku FROM items;"))

	err := runBind(context.Background(), cc, "SELECT sku FROM items")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table")
}

func TestRunBindJSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()
	cc := testContext(t, tr)

	require.NoError(t, runBind(context.Background(), cc, "SELECT id FROM users; INSERT INTO users VALUES (1, 'ada');"))
	testutil.AssertNoANSI(t, tr.Output())

	var results []map[string]any
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "SELECT", results[0]["kind"])
	assert.Equal(t, "INSERT", results[1]["kind"])
	assert.NotNil(t, results[0]["statement"])
}

func TestCollectSQLFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeSQL(t, dir, "a.sql", "SELECT 1")
	b := writeSQL(t, dir, "nested/b.sql", "SELECT 1")
	writeSQL(t, dir, "notes.txt", "not sql")
	explicit := writeSQL(t, t.TempDir(), "query.txt", "SELECT 1")

	files, err := collectSQLFiles([]string{dir, a, explicit})
	require.NoError(t, err)

	want := []string{a, b, explicit}
	assert.ElementsMatch(t, want, files)
	assert.IsIncreasing(t, files)

	_, err = collectSQLFiles([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot check")
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "good.sql", "SELECT u.name, SUM(o.amount) FROM users u JOIN orders o ON u.id = o.user_id GROUP BY u.name;")
	writeSQL(t, dir, "script.sql", "CREATE TABLE t (a INT); INSERT INTO t VALUES (1);")

	t.Run("all ok", func(t *testing.T) {
		tr := testutil.NewTestRendererText()
		cc := testContext(t, tr)

		require.NoError(t, runCheck(context.Background(), cc, []string{dir}, false))
		out := tr.Output()
		assert.Contains(t, out, "good.sql")
		assert.Contains(t, out, "script.sql")
		assert.Contains(t, out, "2 files checked, 0 failed")
	})

	t.Run("failure", func(t *testing.T) {
		bad := writeSQL(t, t.TempDir(), "bad.sql", "SELECT nope FROM users;")
		tr := testutil.NewTestRendererText()
		cc := testContext(t, tr)

		err := runCheck(context.Background(), cc, []string{dir, bad}, false)
		require.ErrorIs(t, err, ErrCheckFailed)
		assert.Contains(t, tr.Output(), "invalid column")
		assert.Contains(t, tr.ErrorOutput(), "3 files checked, 1 failed")
	})

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()
		cc := testContext(t, tr)

		require.NoError(t, runCheck(context.Background(), cc, []string{dir}, false))

		var results []FileResult
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &results))
		require.Len(t, results, 2)
		statements := map[string]int{}
		for _, r := range results {
			assert.True(t, r.OK, r.File)
			statements[filepath.Base(r.File)] = r.Statements
		}
		assert.Equal(t, map[string]int{"good.sql": 1, "script.sql": 2}, statements)
	})
}

func TestRunCheckCompact(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "ok.sql", "SELECT id FROM users;")
	writeSQL(t, dir, "broken.sql", "SELECT id FROM nowhere;")

	tr := testutil.NewTestRendererText()
	cc := testContext(t, tr)

	err := runCheck(context.Background(), cc, []string{dir}, true)
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, tr.Output(), "ok.sql")
	assert.Contains(t, tr.Output(), "1 statements")
	assert.Contains(t, tr.Output(), "invalid table")
	assert.NotContains(t, tr.Output(), "STATEMENTS")
}

func TestRunCheckNoFiles(t *testing.T) {
	tr := testutil.NewTestRendererText()
	cc := testContext(t, tr)

	require.NoError(t, runCheck(context.Background(), cc, []string{t.TempDir()}, false))
	assert.Contains(t, tr.ErrorOutput(), "no .sql files found")
}

func TestCheckFilesSharesCatalog(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.sql", "b.sql", "c.sql"} {
		files = append(files, writeSQL(t, dir, name, "CREATE TABLE scratch (x INT); SELECT x FROM scratch;"))
	}
	cat := testCatalog(t)

	results := checkFiles(context.Background(), cat, files, 3, logutil.NewTestLogger(t))
	for _, r := range results {
		assert.True(t, r.OK, "%s: %s", r.File, r.Error)
	}
	_, _, exists := cat.TableByName(0, 0, "scratch")
	assert.False(t, exists, "file DDL must not reach the shared catalog")
}

func TestRunCatalog(t *testing.T) {
	tests := []struct {
		name        string
		renderer    func() *testutil.TestRenderer
		filter      []string
		columns     bool
		contains    []string
		notContains []string
		wantErr     string
	}{
		{
			name:     "tables",
			renderer: testutil.NewTestRendererText,
			contains: []string{"orders", "users", "(2 rows)"},
		},
		{
			name:     "columns",
			renderer: testutil.NewTestRendererText,
			columns:  true,
			contains: []string{"postgres.orders", "DECIMAL(10,2)", "user_id"},
		},
		{
			name:        "filtered",
			renderer:    testutil.NewTestRendererMarkdown,
			filter:      []string{"postgres.USERS"},
			contains:    []string{"## postgres.users", "| id"},
			notContains: []string{"orders"},
		},
		{
			name:     "missing table",
			renderer: testutil.NewTestRendererText,
			filter:   []string{"nope"},
			wantErr:  "table nope not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.renderer()
			cc := testContext(t, tr)

			err := runCatalog(cc, tt.filter, tt.columns)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, tr.Output(), want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, tr.Output(), unwanted)
			}
		})
	}
}

func TestRunCatalogJSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()
	cc := testContext(t, tr)

	require.NoError(t, runCatalog(cc, nil, false))

	var tables []TableInfo
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &tables))
	require.Len(t, tables, 2)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, "users", tables[1].Name)
	require.Len(t, tables[1].Columns, 2)
	assert.Equal(t, ColumnInfo{ID: 0, Name: "id", Type: "INT", Nullable: false, Primary: true}, tables[1].Columns[0])
}

func TestREPLSession(t *testing.T) {
	tr := testutil.NewTestRendererText()
	cc := testContext(t, tr)
	sess := newREPLSession(cc)
	ctx := context.Background()

	assert.False(t, sess.handleLine(ctx, "SELECT id"))
	assert.Positive(t, sess.buf.Len(), "statement should continue until ;")
	assert.False(t, sess.handleLine(ctx, "FROM users;"))
	assert.Zero(t, sess.buf.Len())
	assert.Contains(t, tr.Output(), "Table postgres.users")

	tr.Reset()
	sess.handleLine(ctx, "CREATE TABLE notes (body VARCHAR);")
	sess.handleLine(ctx, "SELECT body FROM notes;")
	assert.Contains(t, tr.Output(), "notes.body")
	assert.Empty(t, tr.ErrorOutput())

	_, _, leaked := cc.Catalog.TableByName(0, 0, "notes")
	assert.False(t, leaked, "session DDL must stay in the session catalog")

	tr.Reset()
	sess.handleLine(ctx, "SELECT nope FROM users;")
	assert.Contains(t, tr.ErrorOutput(), "invalid column")

	tr.Reset()
	sess.handleLine(ctx, ".tables")
	assert.Contains(t, tr.Output(), "notes")

	tr.Reset()
	sess.handleLine(ctx, ".schema orders")
	assert.Contains(t, tr.Output(), "amount")

	tr.Reset()
	sess.handleLine(ctx, ".schema")
	assert.Contains(t, tr.ErrorOutput(), "usage: .schema")

	tr.Reset()
	sess.handleLine(ctx, ".functions aggregate")
	assert.Contains(t, tr.Output(), "COUNT(expr) -> bigint")
	assert.NotContains(t, tr.Output(), "LOWER")

	tr.Reset()
	sess.handleLine(ctx, ".functions")
	assert.Contains(t, tr.Output(), "First non-null argument")

	tr.Reset()
	sess.handleLine(ctx, ".functions window")
	assert.Contains(t, tr.ErrorOutput(), "no functions in category window")

	tr.Reset()
	sess.handleLine(ctx, ".bogus")
	assert.Contains(t, tr.ErrorOutput(), "unknown command")

	assert.True(t, sess.handleLine(ctx, ".quit"))
}

func TestREPLCompleter(t *testing.T) {
	tr := testutil.NewTestRendererText()
	sess := newREPLSession(testContext(t, tr))
	sess.handleLine(context.Background(), "CREATE TABLE notes (body VARCHAR);")

	c := sessionCompleter{sess}
	got, _ := c.Do([]rune("no"), 2)
	require.Len(t, got, 1)
	assert.Equal(t, "tes ", string(got[0]))

	got, _ = c.Do([]rune(".sc"), 3)
	require.Len(t, got, 1)
	assert.Equal(t, "hema ", string(got[0]))

	got, _ = c.Do([]rune(".functions ag"), 13)
	require.Len(t, got, 1)
	assert.Equal(t, "gregate ", string(got[0]))
}

func TestHistoryPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/proj", historyFileName), historyPath("/proj"))
	assert.NotEqual(t, "", historyPath(""))
}
