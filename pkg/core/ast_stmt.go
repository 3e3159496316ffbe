package core

// ---------- Statement Types ----------

// SelectStmt represents a complete query, possibly combined with set operations.
type SelectStmt struct {
	NodeInfo
	Body    *SelectBody
	OrderBy []OrderByItem
	Limit   Expr
	Offset  Expr
}

func (*SelectStmt) stmtNode() {}

// SelectBody represents the body of a SELECT with possible set operations.
type SelectBody struct {
	NodeInfo
	Left  *SelectCore
	Op    SetOpType   // UNION, INTERSECT, EXCEPT, or empty
	All   bool        // UNION ALL
	Right *SelectBody // For chained set operations
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectCore represents the core SELECT clause.
type SelectCore struct {
	NodeInfo
	Distinct bool
	Columns  []SelectItem
	From     *FromClause
	Where    Expr
	GroupBy  []Expr
	Having   Expr
}

// SelectItem represents an item in the SELECT list.
type SelectItem struct {
	Star      bool   // SELECT *
	TableStar string // SELECT t.*
	Expr      Expr
	Alias     string // AS alias
}

// FromClause represents the FROM clause.
type FromClause struct {
	NodeInfo
	Source TableRef
	Joins  []*Join
}

// Join represents a JOIN clause.
type Join struct {
	NodeInfo
	Type      JoinType
	Right     TableRef
	Condition Expr     // ON clause (mutually exclusive with Using)
	Using     []string // USING (col1, col2) columns
}

// JoinType represents the type of join as its SQL keyword.
type JoinType string

// JoinType constants.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	JoinComma JoinType = ","
)

// OrderByItem represents an item in ORDER BY clause.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// ColumnDef is a column declaration in CREATE TABLE.
type ColumnDef struct {
	Name       string
	Type       TypeName
	NotNull    bool
	PrimaryKey bool
}

// CreateTableStmt represents CREATE TABLE.
type CreateTableStmt struct {
	NodeInfo
	Name        ObjectName
	IfNotExists bool
	Columns     []ColumnDef
	PrimaryKey  []string // table-level PRIMARY KEY (a, b)
}

func (*CreateTableStmt) stmtNode() {}

// DropStmt represents DROP TABLE.
type DropStmt struct {
	NodeInfo
	Names    []ObjectName
	IfExists bool
	Cascade  bool
}

func (*DropStmt) stmtNode() {}

// InsertStmt represents INSERT INTO ... VALUES or INSERT INTO ... SELECT.
type InsertStmt struct {
	NodeInfo
	Table   ObjectName
	Columns []string
	Values  [][]Expr
	Select  *SelectStmt
}

func (*InsertStmt) stmtNode() {}

// DeleteStmt represents DELETE FROM.
type DeleteStmt struct {
	NodeInfo
	Table *TableName
	Where Expr
}

func (*DeleteStmt) stmtNode() {}

// CopyStmt represents COPY table [(cols)] FROM|TO 'path' [WITH (...)].
type CopyStmt struct {
	NodeInfo
	Table   ObjectName
	Columns []string
	To      bool   // COPY ... TO
	Target  string // file path; empty for STDIN/STDOUT
	Options []CopyOption
}

func (*CopyStmt) stmtNode() {}

// CopyOption is a single COPY option such as DELIMITER ','.
type CopyOption struct {
	Name  string
	Value string
}

// ExplainStmt represents EXPLAIN <statement>.
type ExplainStmt struct {
	NodeInfo
	Stmt Stmt
}

func (*ExplainStmt) stmtNode() {}

// ShowKind distinguishes the SHOW variants.
type ShowKind int

// ShowKind constants.
const (
	ShowVariable ShowKind = iota
	ShowCreate
	ShowColumns
)

// ShowStmt represents SHOW name, SHOW CREATE TABLE t and SHOW COLUMNS FROM t.
type ShowStmt struct {
	NodeInfo
	Kind ShowKind
	Name ObjectName
}

func (*ShowStmt) stmtNode() {}

// TransactionStmt represents BEGIN, COMMIT and ROLLBACK.
type TransactionStmt struct {
	NodeInfo
	Action string
}

func (*TransactionStmt) stmtNode() {}
