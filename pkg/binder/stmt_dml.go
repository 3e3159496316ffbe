package binder

import (
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

// targetColumns resolves an explicit column list against the target table,
// or returns every column when the list is empty. With requireAll set,
// omitted NOT NULL columns are rejected.
func targetColumns(table *catalog.TableCatalog, names []string, requireAll bool) ([]catalog.ColumnCatalog, error) {
	if len(names) == 0 {
		return table.Columns(), nil
	}
	seen := make(map[string]struct{}, len(names))
	cols := make([]catalog.ColumnCatalog, 0, len(names))
	for _, n := range names {
		name := lowerIdent(n)
		col, ok := table.ColumnByName(name)
		if !ok {
			return nil, invalidColumn(name)
		}
		if _, dup := seen[name]; dup {
			return nil, duplicatedColumn(name)
		}
		seen[name] = struct{}{}
		cols = append(cols, col)
	}
	if requireAll {
		for _, c := range table.Columns() {
			if _, ok := seen[c.Desc.Name]; !ok && !c.Desc.IsNullable() {
				return nil, notNullableColumn(c.Desc.Name)
			}
		}
	}
	return cols, nil
}

func splitColumns(cols []catalog.ColumnCatalog) ([]catalog.ColumnID, []catalog.ColumnDesc) {
	ids := make([]catalog.ColumnID, len(cols))
	descs := make([]catalog.ColumnDesc, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
		descs[i] = c.Desc
	}
	return ids, descs
}

func (b *Binder) bindInsert(s *core.InsertStmt) (BoundStatement, error) {
	rt, err := b.lookupTable(s.Table)
	if err != nil {
		return nil, err
	}
	b.baseTableRefs = append(b.baseTableRefs, rt.qualified())

	cols, err := targetColumns(rt.table, s.Columns, true)
	if err != nil {
		return nil, err
	}
	ins := &BoundInsert{Table: rt.bound("")}
	ins.Columns, ins.Descs = splitColumns(cols)

	if s.Select != nil {
		before := len(b.baseTableRefs)
		query, err := b.bindSelect(s.Select, false)
		if err != nil {
			return nil, err
		}
		out := query.OutputColumns()
		if len(out) != len(cols) {
			return nil, invalidExpression("INSERT has %d target columns but the query returns %d", len(cols), len(out))
		}
		for i, desc := range ins.Descs {
			if _, ok := types.Coerce(desc.DataType, out[i].DataType); !ok {
				return nil, invalidExpression("column %s is of type %s but expression is of type %s", desc.Name, desc.DataType, out[i].DataType)
			}
		}
		for _, ref := range b.baseTableRefs[before:] {
			if ref == rt.qualified() {
				ins.ReadsTarget = true
			}
		}
		ins.Select = query
		return ins, nil
	}

	for _, row := range s.Values {
		if len(row) != len(cols) {
			return nil, invalidExpression("INSERT has %d target columns but %d expressions", len(cols), len(row))
		}
		bound := make([]BoundExpr, len(row))
		for i, v := range row {
			if bound[i], err = b.bindValue(v, ins.Descs[i]); err != nil {
				return nil, err
			}
		}
		ins.Rows = append(ins.Rows, bound)
	}
	return ins, nil
}

// bindDelete binds the target in a fresh scope, so the filter only sees it.
func (b *Binder) bindDelete(s *core.DeleteStmt) (BoundStatement, error) {
	if s.Table == nil {
		return nil, &Error{Kind: KindInvalidSQL}
	}
	return inScope(b, false, func() (BoundStatement, error) {
		table, _, err := b.bindBaseTable(s.Table)
		if err != nil {
			return nil, err
		}
		del := &BoundDelete{Table: table}
		if s.Where != nil {
			if del.Where, err = b.bindExpr(s.Where); err != nil {
				return nil, err
			}
			if err := requireBool("WHERE", del.Where); err != nil {
				return nil, err
			}
			if hasAggregate(del.Where) {
				return nil, invalidExpression("aggregate functions are not allowed in WHERE")
			}
		}
		return del, nil
	})
}

func (b *Binder) bindCopy(s *core.CopyStmt) (BoundStatement, error) {
	rt, err := b.lookupTable(s.Table)
	if err != nil {
		return nil, err
	}
	b.baseTableRefs = append(b.baseTableRefs, rt.qualified())

	cols, err := targetColumns(rt.table, s.Columns, !s.To)
	if err != nil {
		return nil, err
	}
	opts, err := copyOptions(s.Options)
	if err != nil {
		return nil, err
	}
	c := &BoundCopy{Table: rt.bound(""), To: s.To, Target: s.Target, Options: opts}
	c.Columns, c.Descs = splitColumns(cols)
	return c, nil
}

// copyOptions validates COPY options and fills in defaults.
func copyOptions(options []core.CopyOption) (CopyOptions, error) {
	opts := CopyOptions{Format: "csv", Quote: `"`}
	delimiter := ""
	for _, o := range options {
		switch o.Name {
		case "format":
			switch f := strings.ToLower(o.Value); f {
			case "csv", "text":
				opts.Format = f
			default:
				return CopyOptions{}, invalidExpression("COPY format %q not recognized", o.Value)
			}
		case "delimiter":
			if len(o.Value) != 1 {
				return CopyOptions{}, invalidExpression("COPY delimiter must be a single one-byte character")
			}
			delimiter = o.Value
		case "quote":
			if len(o.Value) != 1 {
				return CopyOptions{}, invalidExpression("COPY quote must be a single one-byte character")
			}
			opts.Quote = o.Value
		case "header":
			switch strings.ToLower(o.Value) {
			case "", "true", "on", "1":
				opts.Header = true
			case "false", "off", "0":
				opts.Header = false
			default:
				return CopyOptions{}, invalidExpression("header requires a Boolean value")
			}
		default:
			return CopyOptions{}, invalidExpression("option %q not recognized", o.Name)
		}
	}
	switch {
	case delimiter != "":
		opts.Delimiter = delimiter
	case opts.Format == "text":
		opts.Delimiter = "\t"
	default:
		opts.Delimiter = ","
	}
	return opts, nil
}
