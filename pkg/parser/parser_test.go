package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/parser"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

func parseSelect(t *testing.T, sql string) *core.SelectStmt {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	sel, ok := stmt.(*core.SelectStmt)
	require.True(t, ok, "expected *core.SelectStmt, got %T", stmt)
	return sel
}

// ---------- Lexer ----------

func TestTokenize(t *testing.T) {
	toks := parser.Tokenize("SELECT a.b, 'it''s', \"Quoted\"\"Id\" FROM t -- trailing\n/* block */ WHERE x <> 1.5e3;")

	var types []token.TokenType
	var lits []string
	for _, tok := range toks {
		types = append(types, tok.Type)
		lits = append(lits, tok.Literal)
	}

	assert.Equal(t, []token.TokenType{
		token.SELECT, token.IDENT, token.DOT, token.IDENT, token.COMMA,
		token.STRING, token.COMMA, token.IDENT, token.FROM, token.IDENT,
		token.WHERE, token.IDENT, token.NE, token.NUMBER, token.SEMICOLON, token.EOF,
	}, types)
	assert.Equal(t, "it's", lits[5])
	assert.Equal(t, `Quoted"Id`, lits[7])
	assert.Equal(t, "1.5e3", lits[13])
}

func TestTokenizePositions(t *testing.T) {
	toks := parser.Tokenize("SELECT\n  id")
	require.Len(t, toks, 3)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 9}, toks[1].Pos)
}

func TestUnterminatedString(t *testing.T) {
	_, err := parser.Parse("SELECT 'abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), parser.ErrUnterminatedString)
}

// ---------- Queries ----------

func TestParseSelectClauses(t *testing.T) {
	sel := parseSelect(t, `SELECT DISTINCT u.id, name AS n, count(*) total
		FROM users u
		WHERE id > 10 AND name LIKE 'a%'
		GROUP BY name
		HAVING count(*) > 1
		ORDER BY n DESC, id
		LIMIT 10 OFFSET 5`)

	sc := sel.Body.Left
	assert.True(t, sc.Distinct)
	require.Len(t, sc.Columns, 3)
	assert.Equal(t, &core.ColumnRef{NodeInfo: sc.Columns[0].Expr.(*core.ColumnRef).NodeInfo, Table: "u", Column: "id"}, sc.Columns[0].Expr)
	assert.Equal(t, "n", sc.Columns[1].Alias)
	assert.Equal(t, "total", sc.Columns[2].Alias)
	fn := sc.Columns[2].Expr.(*core.FuncCall)
	assert.Equal(t, "COUNT", fn.Name)
	assert.True(t, fn.Star)

	tbl := sc.From.Source.(*core.TableName)
	assert.Equal(t, core.ObjectName{"users"}, tbl.Name)
	assert.Equal(t, "u", tbl.Alias)

	and := sc.Where.(*core.BinaryExpr)
	assert.Equal(t, token.AND, and.Op)
	assert.IsType(t, &core.LikeExpr{}, and.Right)

	require.Len(t, sc.GroupBy, 1)
	assert.NotNil(t, sc.Having)
	require.Len(t, sel.OrderBy, 2)
	assert.True(t, sel.OrderBy[0].Desc)
	assert.False(t, sel.OrderBy[1].Desc)
	assert.Equal(t, "10", sel.Limit.(*core.Literal).Value)
	assert.Equal(t, "5", sel.Offset.(*core.Literal).Value)
}

func TestParsePrecedence(t *testing.T) {
	sel := parseSelect(t, "SELECT a + b * c = d OR NOT e FROM t")
	or := sel.Body.Left.Columns[0].Expr.(*core.BinaryExpr)
	require.Equal(t, token.OR, or.Op)

	eq := or.Left.(*core.BinaryExpr)
	require.Equal(t, token.EQ, eq.Op)
	plus := eq.Left.(*core.BinaryExpr)
	require.Equal(t, token.PLUS, plus.Op)
	mul := plus.Right.(*core.BinaryExpr)
	assert.Equal(t, token.STAR, mul.Op)

	not := or.Right.(*core.UnaryExpr)
	assert.Equal(t, token.NOT, not.Op)
}

func TestParseSpecialPredicates(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		check func(t *testing.T, e core.Expr)
	}{
		{"is not null", "SELECT a IS NOT NULL FROM t", func(t *testing.T, e core.Expr) {
			is := e.(*core.IsNullExpr)
			assert.True(t, is.Not)
		}},
		{"not in list", "SELECT a NOT IN (1, 2) FROM t", func(t *testing.T, e core.Expr) {
			in := e.(*core.InExpr)
			assert.True(t, in.Not)
			assert.Len(t, in.Values, 2)
		}},
		{"in subquery", "SELECT a IN (SELECT b FROM s) FROM t", func(t *testing.T, e core.Expr) {
			in := e.(*core.InExpr)
			assert.NotNil(t, in.Query)
		}},
		{"between", "SELECT a BETWEEN 1 AND 2 AND b FROM t", func(t *testing.T, e core.Expr) {
			and := e.(*core.BinaryExpr)
			assert.Equal(t, token.AND, and.Op)
			assert.IsType(t, &core.BetweenExpr{}, and.Left)
		}},
		{"not exists", "SELECT NOT EXISTS (SELECT 1) FROM t", func(t *testing.T, e core.Expr) {
			ex := e.(*core.ExistsExpr)
			assert.True(t, ex.Not)
		}},
		{"scalar subquery", "SELECT (SELECT max(b) FROM s) FROM t", func(t *testing.T, e core.Expr) {
			assert.IsType(t, &core.SubqueryExpr{}, e)
		}},
		{"cast", "SELECT CAST(a AS DECIMAL(10, 2)) FROM t", func(t *testing.T, e core.Expr) {
			c := e.(*core.CastExpr)
			assert.Equal(t, core.TypeName{Name: "DECIMAL", Args: []int{10, 2}}, c.TypeName)
		}},
		{"double precision", "SELECT CAST(a AS double precision) FROM t", func(t *testing.T, e core.Expr) {
			c := e.(*core.CastExpr)
			assert.Equal(t, "double precision", c.TypeName.Name)
		}},
		{"paren", "SELECT (a) FROM t", func(t *testing.T, e core.Expr) {
			assert.IsType(t, &core.ParenExpr{}, e)
		}},
		{"negative", "SELECT -a FROM t", func(t *testing.T, e core.Expr) {
			u := e.(*core.UnaryExpr)
			assert.Equal(t, token.MINUS, u.Op)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := parseSelect(t, tt.sql)
			tt.check(t, sel.Body.Left.Columns[0].Expr)
		})
	}
}

func TestParseStars(t *testing.T) {
	sel := parseSelect(t, "SELECT *, t.* FROM t")
	cols := sel.Body.Left.Columns
	require.Len(t, cols, 2)
	assert.True(t, cols[0].Star)
	assert.Equal(t, "t", cols[1].TableStar)
}

func TestParseJoins(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantType core.JoinType
		using    []string
		hasOn    bool
	}{
		{"plain join", "SELECT * FROM a JOIN b ON a.id = b.id", core.JoinInner, nil, true},
		{"left outer", "SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.id", core.JoinLeft, nil, true},
		{"full", "SELECT * FROM a FULL JOIN b USING (id, k)", core.JoinFull, []string{"id", "k"}, false},
		{"cross", "SELECT * FROM a CROSS JOIN b", core.JoinCross, nil, false},
		{"comma", "SELECT * FROM a, b", core.JoinComma, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := parseSelect(t, tt.sql)
			require.Len(t, sel.Body.Left.From.Joins, 1)
			join := sel.Body.Left.From.Joins[0]
			assert.Equal(t, tt.wantType, join.Type)
			assert.Equal(t, tt.using, join.Using)
			assert.Equal(t, tt.hasOn, join.Condition != nil)
		})
	}
}

func TestParseJoinRequiresCondition(t *testing.T) {
	_, err := parser.Parse("SELECT * FROM a JOIN b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected ON or USING")
}

func TestParseDerivedTable(t *testing.T) {
	sel := parseSelect(t, "SELECT s.x FROM (SELECT a AS x FROM t) AS s")
	dt := sel.Body.Left.From.Source.(*core.DerivedTable)
	assert.Equal(t, "s", dt.Alias)
	assert.NotNil(t, dt.Select)

	// a missing alias is a binder concern
	sel = parseSelect(t, "SELECT 1 FROM (SELECT a FROM t)")
	assert.Empty(t, sel.Body.Left.From.Source.(*core.DerivedTable).Alias)
}

func TestParseSetOperations(t *testing.T) {
	sel := parseSelect(t, "SELECT a FROM t UNION ALL SELECT b FROM s EXCEPT SELECT c FROM r ORDER BY 1")
	assert.Equal(t, core.SetOpUnion, sel.Body.Op)
	assert.True(t, sel.Body.All)
	require.NotNil(t, sel.Body.Right)
	assert.Equal(t, core.SetOpExcept, sel.Body.Right.Op)
	assert.Len(t, sel.OrderBy, 1)
}

// ---------- Other statements ----------

func TestParseCreateTable(t *testing.T) {
	stmt, err := parser.Parse(`CREATE TABLE IF NOT EXISTS s.users (
		id INT NOT NULL PRIMARY KEY,
		name VARCHAR(20) NULL,
		balance DECIMAL(10, 2),
		PRIMARY KEY (id)
	)`)
	require.NoError(t, err)

	ct := stmt.(*core.CreateTableStmt)
	assert.True(t, ct.IfNotExists)
	assert.Equal(t, core.ObjectName{"s", "users"}, ct.Name)
	require.Len(t, ct.Columns, 3)
	assert.Equal(t, core.ColumnDef{Name: "id", Type: core.TypeName{Name: "INT"}, NotNull: true, PrimaryKey: true}, ct.Columns[0])
	assert.Equal(t, core.TypeName{Name: "VARCHAR", Args: []int{20}}, ct.Columns[1].Type)
	assert.False(t, ct.Columns[1].NotNull)
	assert.Equal(t, []string{"id"}, ct.PrimaryKey)
}

func TestParseDrop(t *testing.T) {
	stmt, err := parser.Parse("DROP TABLE IF EXISTS a, s.b CASCADE")
	require.NoError(t, err)
	drop := stmt.(*core.DropStmt)
	assert.True(t, drop.IfExists)
	assert.True(t, drop.Cascade)
	assert.Equal(t, []core.ObjectName{{"a"}, {"s", "b"}}, drop.Names)
}

func TestParseInsert(t *testing.T) {
	stmt, err := parser.Parse("INSERT INTO users (id, name) VALUES (1, 'a'), (2, NULL)")
	require.NoError(t, err)
	ins := stmt.(*core.InsertStmt)
	assert.Equal(t, []string{"id", "name"}, ins.Columns)
	require.Len(t, ins.Values, 2)
	assert.Len(t, ins.Values[1], 2)

	stmt, err = parser.Parse("INSERT INTO users SELECT * FROM staging")
	require.NoError(t, err)
	ins = stmt.(*core.InsertStmt)
	assert.Nil(t, ins.Columns)
	assert.NotNil(t, ins.Select)
}

func TestParseDelete(t *testing.T) {
	stmt, err := parser.Parse("DELETE FROM users WHERE id = 1")
	require.NoError(t, err)
	del := stmt.(*core.DeleteStmt)
	assert.Equal(t, core.ObjectName{"users"}, del.Table.Name)
	assert.NotNil(t, del.Where)
}

func TestParseCopy(t *testing.T) {
	stmt, err := parser.Parse("COPY users (id, name) TO '/tmp/u.csv' WITH (DELIMITER '|', HEADER true, FORMAT csv)")
	require.NoError(t, err)
	cp := stmt.(*core.CopyStmt)
	assert.True(t, cp.To)
	assert.Equal(t, "/tmp/u.csv", cp.Target)
	assert.Equal(t, []string{"id", "name"}, cp.Columns)
	assert.Equal(t, []core.CopyOption{
		{Name: "delimiter", Value: "|"},
		{Name: "header", Value: "true"},
		{Name: "format", Value: "csv"},
	}, cp.Options)

	stmt, err = parser.Parse("COPY users FROM STDIN")
	require.NoError(t, err)
	cp = stmt.(*core.CopyStmt)
	assert.False(t, cp.To)
	assert.Empty(t, cp.Target)
}

func TestParseExplainShowTransaction(t *testing.T) {
	stmt, err := parser.Parse("EXPLAIN SELECT 1")
	require.NoError(t, err)
	assert.IsType(t, &core.SelectStmt{}, stmt.(*core.ExplainStmt).Stmt)

	stmt, err = parser.Parse("SHOW COLUMNS FROM users")
	require.NoError(t, err)
	assert.Equal(t, core.ShowColumns, stmt.(*core.ShowStmt).Kind)

	stmt, err = parser.Parse("SHOW CREATE TABLE users")
	require.NoError(t, err)
	assert.Equal(t, core.ShowCreate, stmt.(*core.ShowStmt).Kind)

	stmt, err = parser.Parse("SHOW search_path")
	require.NoError(t, err)
	assert.Equal(t, core.ShowVariable, stmt.(*core.ShowStmt).Kind)

	stmt, err = parser.Parse("BEGIN")
	require.NoError(t, err)
	assert.Equal(t, "BEGIN", stmt.(*core.TransactionStmt).Action)
}

func TestParseScript(t *testing.T) {
	stmts, err := parser.ParseScript(`
		CREATE TABLE t (a INT);
		;
		INSERT INTO t VALUES (1);
		SELECT a FROM t
	`)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.IsType(t, &core.CreateTableStmt{}, stmts[0])
	assert.IsType(t, &core.InsertStmt{}, stmts[1])
	assert.IsType(t, &core.SelectStmt{}, stmts[2])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"trailing garbage", "SELECT 1 FROM t t2 t3", "unexpected token"},
		{"missing statement", "FROM t", "expected statement"},
		{"bad column qualifier", "SELECT a.b.c FROM t", "at most one qualifier"},
		{"illegal char", "SELECT a ? b FROM t", "illegal token"},
		{"missing separator", "SELECT 1 SELECT 2", "unexpected token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.sql)
			require.Error(t, err)
			var pe *parser.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, pe.Message, tt.want)
		})
	}
}
