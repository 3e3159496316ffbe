package binder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/parser"
)

func script(t *testing.T, sql string) []core.Stmt {
	t.Helper()
	stmts, err := parser.ParseScript(sql)
	require.NoError(t, err)
	return stmts
}

func TestBindAllKeepsOrder(t *testing.T) {
	cat := testCatalog(t)
	stmts := script(t, `
		SELECT a FROM t1;
		DELETE FROM users WHERE age > 1;
		INSERT INTO loose VALUES (1);
		SELECT kind FROM sales.events;
	`)

	for _, limit := range []int{0, 1, 3} {
		bound, err := BindAll(context.Background(), cat, stmts, limit)
		require.NoError(t, err)
		require.Len(t, bound, 4)
		kinds := make([]string, len(bound))
		for i, b := range bound {
			kinds[i] = b.Kind()
		}
		assert.Equal(t, []string{"SELECT", "DELETE", "INSERT", "SELECT"}, kinds)
	}
}

func TestBindAllReportsStatementNumber(t *testing.T) {
	stmts := script(t, "SELECT a FROM t1; SELECT * FROM nope; SELECT c FROM t2")

	_, err := BindAll(context.Background(), testCatalog(t), stmts, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTable)
	assert.EqualError(t, err, "statement 2: invalid table nope")
}

func TestBindAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BindAll(ctx, testCatalog(t), script(t, "SELECT a FROM t1"), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBindScriptAppliesDDL(t *testing.T) {
	cat := testCatalog(t)
	bound, err := BindScript(context.Background(), cat, script(t, `
		CREATE TABLE notes (id INT PRIMARY KEY, body VARCHAR);
		INSERT INTO notes VALUES (1, 'hello');
		SELECT body FROM notes WHERE id = 1;
		CREATE TABLE IF NOT EXISTS notes (x INT);
	`))
	require.NoError(t, err)
	require.Len(t, bound, 4)

	dbID, _ := cat.DatabaseByName(catalog.DefaultDatabaseName)
	schemaID, _ := cat.SchemaByName(dbID, catalog.DefaultSchemaName)
	_, table, ok := cat.TableByName(dbID, schemaID, "notes")
	require.True(t, ok)
	assert.Len(t, table.Columns(), 2)
}

func TestBindScriptDrop(t *testing.T) {
	cat := testCatalog(t)
	_, err := BindScript(context.Background(), cat, script(t, `
		DROP TABLE t1;
		DROP TABLE IF EXISTS t1;
		SELECT a FROM t1;
	`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTable)
	assert.EqualError(t, err, "statement 3: invalid table t1")
}

func TestBindScriptCreateTwice(t *testing.T) {
	_, err := BindScript(context.Background(), testCatalog(t), script(t, `
		CREATE TABLE twice (x INT);
		CREATE TABLE twice (y INT);
	`))
	require.Error(t, err)
	assert.EqualError(t, err, "statement 2: table postgres.twice already exists")
}

func TestBindScriptDoesNotTouchCallerOnFailure(t *testing.T) {
	cat := testCatalog(t)
	work := cat.Clone()
	_, err := BindScript(context.Background(), work, script(t, "DROP TABLE t1; SELECT * FROM missing"))
	require.Error(t, err)

	_, err = bindSQL(t, cat, "SELECT a FROM t1")
	assert.NoError(t, err)
}

func TestHasDDL(t *testing.T) {
	assert.False(t, HasDDL(script(t, "SELECT 1; DELETE FROM t1")))
	assert.True(t, HasDDL(script(t, "SELECT 1; DROP TABLE t1")))
	assert.True(t, HasDDL(script(t, "CREATE TABLE x (a INT)")))
	assert.False(t, HasDDL(nil))
}
