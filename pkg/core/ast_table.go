package core

// ---------- Table Reference Types ----------

// TableName represents a table name reference.
type TableName struct {
	NodeInfo
	Name  ObjectName
	Alias string
}

func (*TableName) tableRefNode() {}

// DerivedTable represents a subquery in FROM clause.
type DerivedTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (*DerivedTable) tableRefNode() {}
