// Package catalog holds the schema snapshot the binder resolves names against.
//
// A RootCatalog contains databases, each database contains schemas and each
// schema contains tables. Tables are immutable once added; the catalog itself
// is safe for concurrent readers and is only mutated by loaders and by callers
// that apply DDL between bind calls.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/leapstack-labs/leapbind/pkg/types"
)

// Default names used when a statement does not qualify a table.
const (
	DefaultDatabaseName = "postgres"
	DefaultSchemaName   = "postgres"
)

// Identifier types. IDs are assigned in creation order and never reused.
type (
	DatabaseID uint32
	SchemaID   uint32
	TableID    uint32
	ColumnID   uint32
)

// TableRefID identifies a physical table.
type TableRefID struct {
	DatabaseID DatabaseID `json:"database_id"`
	SchemaID   SchemaID   `json:"schema_id"`
	TableID    TableID    `json:"table_id"`
}

func (r TableRefID) String() string {
	return fmt.Sprintf("$%d.%d.%d", r.DatabaseID, r.SchemaID, r.TableID)
}

// ColumnDesc describes a column: its name, declared type and primary-key flag.
type ColumnDesc struct {
	Name      string         `json:"name"`
	DataType  types.DataType `json:"type"`
	IsPrimary bool           `json:"is_primary,omitempty"`
}

// NewColumnDesc builds a column descriptor.
func NewColumnDesc(name string, dt types.DataType, isPrimary bool) ColumnDesc {
	return ColumnDesc{Name: name, DataType: dt, IsPrimary: isPrimary}
}

// IsNullable reports whether the column accepts NULL.
func (c ColumnDesc) IsNullable() bool { return c.DataType.Nullable }

// ColumnCatalog is a column with its id inside the owning table.
type ColumnCatalog struct {
	ID   ColumnID
	Desc ColumnDesc
}

// TableCatalog is an immutable table definition.
type TableCatalog struct {
	id      TableID
	name    string
	columns []ColumnCatalog
	byName  map[string]ColumnID
}

func newTableCatalog(id TableID, name string, descs []ColumnDesc) (*TableCatalog, error) {
	t := &TableCatalog{
		id:     id,
		name:   name,
		byName: make(map[string]ColumnID, len(descs)),
	}
	for i, d := range descs {
		if _, dup := t.byName[d.Name]; dup {
			return nil, fmt.Errorf("table %s: duplicated column %s", name, d.Name)
		}
		cid := ColumnID(i)
		t.byName[d.Name] = cid
		t.columns = append(t.columns, ColumnCatalog{ID: cid, Desc: d})
	}
	return t, nil
}

// ID returns the table id within its schema.
func (t *TableCatalog) ID() TableID { return t.id }

// Name returns the table name.
func (t *TableCatalog) Name() string { return t.name }

// Columns returns the columns in declaration order.
func (t *TableCatalog) Columns() []ColumnCatalog {
	out := make([]ColumnCatalog, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the column with the given id.
func (t *TableCatalog) Column(id ColumnID) (ColumnCatalog, bool) {
	if int(id) >= len(t.columns) {
		return ColumnCatalog{}, false
	}
	return t.columns[id], true
}

// ColumnByName looks a column up by its exact name.
func (t *TableCatalog) ColumnByName(name string) (ColumnCatalog, bool) {
	id, ok := t.byName[name]
	if !ok {
		return ColumnCatalog{}, false
	}
	return t.columns[id], true
}

type schemaCatalog struct {
	id          SchemaID
	name        string
	tables      map[string]*TableCatalog
	tablesByID  map[TableID]*TableCatalog
	nextTableID TableID
}

type databaseCatalog struct {
	id           DatabaseID
	name         string
	schemas      map[string]*schemaCatalog
	schemasByID  map[SchemaID]*schemaCatalog
	nextSchemaID SchemaID
}

// Reader is the read-only view the binder needs. Implementations must be
// safe for concurrent use.
type Reader interface {
	DatabaseByName(name string) (DatabaseID, bool)
	SchemaByName(db DatabaseID, name string) (SchemaID, bool)
	TableByName(db DatabaseID, schema SchemaID, name string) (TableRefID, *TableCatalog, bool)
	Table(ref TableRefID) (*TableCatalog, bool)
}

// RootCatalog is the in-memory catalog.
type RootCatalog struct {
	mu          sync.RWMutex
	databases   map[string]*databaseCatalog
	databasesBy map[DatabaseID]*databaseCatalog
	nextDBID    DatabaseID
}

var _ Reader = (*RootCatalog)(nil)

// New returns a catalog containing the default database and schema.
func New() *RootCatalog {
	r := &RootCatalog{
		databases:   make(map[string]*databaseCatalog),
		databasesBy: make(map[DatabaseID]*databaseCatalog),
	}
	db := r.addDatabaseLocked(DefaultDatabaseName)
	r.addSchemaLocked(db, DefaultSchemaName)
	return r
}

func (r *RootCatalog) addDatabaseLocked(name string) *databaseCatalog {
	db := &databaseCatalog{
		id:          r.nextDBID,
		name:        name,
		schemas:     make(map[string]*schemaCatalog),
		schemasByID: make(map[SchemaID]*schemaCatalog),
	}
	r.nextDBID++
	r.databases[name] = db
	r.databasesBy[db.id] = db
	return db
}

func (r *RootCatalog) addSchemaLocked(db *databaseCatalog, name string) *schemaCatalog {
	s := &schemaCatalog{
		id:         db.nextSchemaID,
		name:       name,
		tables:     make(map[string]*TableCatalog),
		tablesByID: make(map[TableID]*TableCatalog),
	}
	db.nextSchemaID++
	db.schemas[name] = s
	db.schemasByID[s.id] = s
	return s
}

// DatabaseByName implements Reader.
func (r *RootCatalog) DatabaseByName(name string) (DatabaseID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.databases[name]
	if !ok {
		return 0, false
	}
	return db.id, true
}

// SchemaByName implements Reader.
func (r *RootCatalog) SchemaByName(dbID DatabaseID, name string) (SchemaID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.databasesBy[dbID]
	if !ok {
		return 0, false
	}
	s, ok := db.schemas[name]
	if !ok {
		return 0, false
	}
	return s.id, true
}

// TableByName implements Reader.
func (r *RootCatalog) TableByName(dbID DatabaseID, schemaID SchemaID, name string) (TableRefID, *TableCatalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemaLocked(dbID, schemaID)
	if !ok {
		return TableRefID{}, nil, false
	}
	t, ok := s.tables[name]
	if !ok {
		return TableRefID{}, nil, false
	}
	return TableRefID{DatabaseID: dbID, SchemaID: schemaID, TableID: t.id}, t, true
}

// Table implements Reader.
func (r *RootCatalog) Table(ref TableRefID) (*TableCatalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemaLocked(ref.DatabaseID, ref.SchemaID)
	if !ok {
		return nil, false
	}
	t, ok := s.tablesByID[ref.TableID]
	return t, ok
}

func (r *RootCatalog) schemaLocked(dbID DatabaseID, schemaID SchemaID) (*schemaCatalog, bool) {
	db, ok := r.databasesBy[dbID]
	if !ok {
		return nil, false
	}
	s, ok := db.schemasByID[schemaID]
	return s, ok
}

// AddSchema creates a schema in the default database.
// Adding an existing schema returns its id.
func (r *RootCatalog) AddSchema(name string) SchemaID {
	r.mu.Lock()
	defer r.mu.Unlock()
	db := r.databases[DefaultDatabaseName]
	if s, ok := db.schemas[name]; ok {
		return s.id
	}
	return r.addSchemaLocked(db, name).id
}

// AddTable creates a table in a schema of the default database.
func (r *RootCatalog) AddTable(schema, name string, columns []ColumnDesc) (TableRefID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	db := r.databases[DefaultDatabaseName]
	s, ok := db.schemas[schema]
	if !ok {
		return TableRefID{}, fmt.Errorf("schema %q not found", schema)
	}
	if _, exists := s.tables[name]; exists {
		return TableRefID{}, fmt.Errorf("table %s.%s already exists", schema, name)
	}
	t, err := newTableCatalog(s.nextTableID, name, columns)
	if err != nil {
		return TableRefID{}, err
	}
	s.nextTableID++
	s.tables[name] = t
	s.tablesByID[t.id] = t
	return TableRefID{DatabaseID: db.id, SchemaID: s.id, TableID: t.id}, nil
}

// DropTable removes a table. Dropping a missing table is an error.
func (r *RootCatalog) DropTable(ref TableRefID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schemaLocked(ref.DatabaseID, ref.SchemaID)
	if !ok {
		return fmt.Errorf("table %s not found", ref)
	}
	t, ok := s.tablesByID[ref.TableID]
	if !ok {
		return fmt.Errorf("table %s not found", ref)
	}
	delete(s.tablesByID, t.id)
	delete(s.tables, t.name)
	return nil
}

// TableEntry is one row of a catalog listing.
type TableEntry struct {
	Schema string
	Ref    TableRefID
	Table  *TableCatalog
}

// ListTables returns every table of the default database ordered by schema and name.
func (r *RootCatalog) ListTables() []TableEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []TableEntry
	db := r.databases[DefaultDatabaseName]
	for _, s := range db.schemas {
		for _, t := range s.tables {
			out = append(out, TableEntry{
				Schema: s.name,
				Ref:    TableRefID{DatabaseID: db.id, SchemaID: s.id, TableID: t.id},
				Table:  t,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Schema != out[j].Schema {
			return out[i].Schema < out[j].Schema
		}
		return out[i].Table.name < out[j].Table.name
	})
	return out
}

// SchemaNames returns the schemas of the default database in sorted order.
func (r *RootCatalog) SchemaNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db := r.databases[DefaultDatabaseName]
	names := make([]string, 0, len(db.schemas))
	for name := range db.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy that can be mutated without affecting r.
// Table definitions are immutable and shared.
func (r *RootCatalog) Clone() *RootCatalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &RootCatalog{
		databases:   make(map[string]*databaseCatalog, len(r.databases)),
		databasesBy: make(map[DatabaseID]*databaseCatalog, len(r.databases)),
		nextDBID:    r.nextDBID,
	}
	for name, db := range r.databases {
		ndb := &databaseCatalog{
			id:           db.id,
			name:         db.name,
			schemas:      make(map[string]*schemaCatalog, len(db.schemas)),
			schemasByID:  make(map[SchemaID]*schemaCatalog, len(db.schemas)),
			nextSchemaID: db.nextSchemaID,
		}
		for sname, s := range db.schemas {
			ns := &schemaCatalog{
				id:          s.id,
				name:        s.name,
				tables:      make(map[string]*TableCatalog, len(s.tables)),
				tablesByID:  make(map[TableID]*TableCatalog, len(s.tables)),
				nextTableID: s.nextTableID,
			}
			for tname, t := range s.tables {
				ns.tables[tname] = t
				ns.tablesByID[t.id] = t
			}
			ndb.schemas[sname] = ns
			ndb.schemasByID[ns.id] = ns
		}
		c.databases[name] = ndb
		c.databasesBy[ndb.id] = ndb
	}
	return c
}
