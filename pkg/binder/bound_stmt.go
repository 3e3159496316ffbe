package binder

import (
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
)

// BoundStatement is the result of binding one statement.
type BoundStatement interface {
	// Kind names the statement variant, e.g. "SELECT".
	Kind() string
	boundStmt()
}

// BoundCreateTable is a resolved CREATE TABLE. Column ids follow declaration order.
type BoundCreateTable struct {
	Schema      string               `json:"schema"`
	SchemaID    catalog.SchemaID     `json:"schema_id"`
	Name        string               `json:"name"`
	Columns     []catalog.ColumnDesc `json:"columns"`
	IfNotExists bool                 `json:"if_not_exists,omitempty"`
}

// DropTarget is one table named by DROP TABLE.
type DropTarget struct {
	Schema string             `json:"schema"`
	Name   string             `json:"name"`
	Ref    catalog.TableRefID `json:"ref"`
	// Missing is set when IF EXISTS skipped an absent table.
	Missing bool `json:"missing,omitempty"`
}

// BoundDrop is a resolved DROP TABLE.
type BoundDrop struct {
	Tables   []DropTarget `json:"tables"`
	IfExists bool         `json:"if_exists,omitempty"`
	Cascade  bool         `json:"cascade,omitempty"`
}

// BoundInsert is a resolved INSERT. Columns lists the target columns in the
// order values are supplied.
type BoundInsert struct {
	Table   *BoundBaseTable      `json:"table"`
	Columns []catalog.ColumnID   `json:"columns"`
	Descs   []catalog.ColumnDesc `json:"descs"`
	Rows    [][]BoundExpr        `json:"rows,omitempty"`
	Select  *BoundSelect         `json:"select,omitempty"`
	// ReadsTarget is set when the source query reads the insert target.
	ReadsTarget bool `json:"reads_target,omitempty"`
}

// BoundDelete is a resolved DELETE.
type BoundDelete struct {
	Table *BoundBaseTable `json:"table"`
	Where BoundExpr       `json:"where,omitempty"`
}

// CopyOptions are the recognized COPY options.
type CopyOptions struct {
	Format    string `json:"format"`
	Delimiter string `json:"delimiter"`
	Quote     string `json:"quote"`
	Header    bool   `json:"header,omitempty"`
}

// BoundCopy is a resolved COPY. Target is empty for STDIN/STDOUT.
type BoundCopy struct {
	Table   *BoundBaseTable      `json:"table"`
	Columns []catalog.ColumnID   `json:"columns"`
	Descs   []catalog.ColumnDesc `json:"descs"`
	To      bool                 `json:"to,omitempty"`
	Target  string               `json:"target,omitempty"`
	Options CopyOptions          `json:"options"`
}

// BoundOrderBy is one ORDER BY key.
type BoundOrderBy struct {
	Expr BoundExpr `json:"expr"`
	Desc bool      `json:"desc,omitempty"`
}

// BoundSelect is a resolved query. When SetOp is set, Right holds the other
// operand and the ORDER BY/LIMIT/OFFSET apply to the combined result.
type BoundSelect struct {
	Distinct   bool           `json:"distinct,omitempty"`
	SelectList []BoundExpr    `json:"select_list"`
	From       BoundTableRef  `json:"from,omitempty"`
	Where      BoundExpr      `json:"where,omitempty"`
	GroupBy    []BoundExpr    `json:"group_by,omitempty"`
	Having     BoundExpr      `json:"having,omitempty"`
	OrderBy    []BoundOrderBy `json:"order_by,omitempty"`
	Limit      BoundExpr      `json:"limit,omitempty"`
	Offset     BoundExpr      `json:"offset,omitempty"`
	SetOp      core.SetOpType `json:"set_op,omitempty"`
	All        bool           `json:"all,omitempty"`
	Right      *BoundSelect   `json:"right,omitempty"`
}

// OutputColumns describes the columns the query produces.
func (s *BoundSelect) OutputColumns() []catalog.ColumnDesc {
	out := make([]catalog.ColumnDesc, len(s.SelectList))
	for i, e := range s.SelectList {
		out[i] = catalog.NewColumnDesc(outputName(e), e.ReturnType(), false)
	}
	return out
}

// outputName picks the name a projected expression is visible under.
func outputName(e BoundExpr) string {
	switch e := e.(type) {
	case *BoundAlias:
		return e.Name
	case *BoundColumnRef:
		return e.Desc.Name
	default:
		return "?column?"
	}
}

// BoundExplain wraps another bound statement.
type BoundExplain struct {
	Stmt BoundStatement `json:"stmt"`
}

// Kind implementations.
func (*BoundCreateTable) Kind() string { return "CREATE TABLE" }
func (*BoundDrop) Kind() string        { return "DROP" }
func (*BoundInsert) Kind() string      { return "INSERT" }
func (*BoundDelete) Kind() string      { return "DELETE" }
func (*BoundCopy) Kind() string        { return "COPY" }
func (*BoundSelect) Kind() string      { return "SELECT" }
func (*BoundExplain) Kind() string     { return "EXPLAIN" }

func (*BoundCreateTable) boundStmt() {}
func (*BoundDrop) boundStmt()        {}
func (*BoundInsert) boundStmt()      {}
func (*BoundDelete) boundStmt()      {}
func (*BoundCopy) boundStmt()        {}
func (*BoundSelect) boundStmt()      {}
func (*BoundExplain) boundStmt()     {}

// BoundTableRef is a resolved FROM item.
type BoundTableRef interface {
	boundTableRef()
}

// BoundBaseTable is a physical table.
type BoundBaseTable struct {
	Ref    catalog.TableRefID `json:"ref"`
	Schema string             `json:"schema"`
	Name   string             `json:"name"`
	Alias  string             `json:"alias,omitempty"`
}

// BoundDerivedTable is a subquery in FROM.
type BoundDerivedTable struct {
	Alias string       `json:"alias"`
	Query *BoundSelect `json:"query"`
}

// BoundJoin joins two table refs. On is nil for CROSS and comma joins.
type BoundJoin struct {
	Left  BoundTableRef `json:"left"`
	Right BoundTableRef `json:"right"`
	Type  core.JoinType `json:"type"`
	On    BoundExpr     `json:"on,omitempty"`
}

func (*BoundBaseTable) boundTableRef()    {}
func (*BoundDerivedTable) boundTableRef() {}
func (*BoundJoin) boundTableRef()         {}
