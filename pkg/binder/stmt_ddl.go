package binder

import (
	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

// bindCreateTable validates a table definition. The table itself is not
// looked up: it does not exist yet.
func (b *Binder) bindCreateTable(s *core.CreateTableStmt) (BoundStatement, error) {
	schema, table, err := resolveName(s.Name)
	if err != nil {
		return nil, err
	}
	schemaID, err := b.lookupSchema(schema)
	if err != nil {
		return nil, err
	}

	primary := make(map[string]bool, len(s.PrimaryKey))
	for _, c := range s.PrimaryKey {
		primary[lowerIdent(c)] = true
	}

	seen := make(map[string]struct{}, len(s.Columns))
	columns := make([]catalog.ColumnDesc, 0, len(s.Columns))
	for _, def := range s.Columns {
		name := lowerIdent(def.Name)
		if _, dup := seen[name]; dup {
			return nil, duplicatedColumn(name)
		}
		seen[name] = struct{}{}

		dt, err := types.ParseTypeName(def.Type)
		if err != nil {
			return nil, invalidExpression("%v", err)
		}
		isPrimary := def.PrimaryKey || primary[name]
		dt = dt.WithNullability(!def.NotNull && !isPrimary)
		columns = append(columns, catalog.NewColumnDesc(name, dt, isPrimary))
	}
	for name := range primary {
		if _, ok := seen[name]; !ok {
			return nil, invalidColumn(name)
		}
	}

	return &BoundCreateTable{
		Schema:      schema,
		SchemaID:    schemaID,
		Name:        table,
		Columns:     columns,
		IfNotExists: s.IfNotExists,
	}, nil
}

// bindDrop resolves every DROP TABLE target.
func (b *Binder) bindDrop(s *core.DropStmt) (BoundStatement, error) {
	drop := &BoundDrop{IfExists: s.IfExists, Cascade: s.Cascade}
	for _, name := range s.Names {
		rt, err := b.lookupTable(name)
		if err != nil {
			if !s.IfExists || !isKind(err, KindInvalidTable) {
				return nil, err
			}
			schema, table, _ := resolveName(name)
			drop.Tables = append(drop.Tables, DropTarget{Schema: schema, Name: table, Missing: true})
			continue
		}
		b.baseTableRefs = append(b.baseTableRefs, rt.qualified())
		drop.Tables = append(drop.Tables, DropTarget{Schema: rt.schema, Name: rt.name, Ref: rt.ref})
	}
	return drop, nil
}

func isKind(err error, kind ErrorKind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == kind
}
