package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbind/internal/cli/output"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
)

// ColumnInfo is the JSON shape of a catalog column.
type ColumnInfo struct {
	ID       catalog.ColumnID `json:"id"`
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Nullable bool             `json:"nullable"`
	Primary  bool             `json:"primary_key,omitempty"`
}

// TableInfo is the JSON shape of a catalog table.
type TableInfo struct {
	Schema  string             `json:"schema"`
	Name    string             `json:"name"`
	Ref     catalog.TableRefID `json:"ref"`
	Columns []ColumnInfo       `json:"columns"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	var showColumns bool

	cmd := &cobra.Command{
		Use:   "catalog [TABLE...]",
		Short: "Show the tables the binder resolves against",
		Long: `List the schemas and tables of the loaded catalog.

The catalog comes from the catalog file when one is configured, otherwise
from introspecting the configured target. Naming tables (or schema.table)
shows their columns.`,
		Example: `  leapbind catalog
  leapbind catalog --columns
  leapbind catalog orders public.users -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runCatalog(cc, args, showColumns)
		},
	}

	cmd.Flags().BoolVarP(&showColumns, "columns", "c", false, "Show columns of every table")

	return cmd
}

func runCatalog(cc *CommandContext, filter []string, showColumns bool) error {
	tables, err := selectTables(cc.Catalog, filter)
	if err != nil {
		return err
	}
	if len(filter) > 0 {
		showColumns = true
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(tables)
	}

	if !showColumns {
		rows := make([][]string, 0, len(tables))
		for _, t := range tables {
			rows = append(rows, []string{t.Schema, t.Name, strconv.Itoa(len(t.Columns)), t.Ref.String()})
		}
		r.Header(1, "Tables")
		r.Table([]string{"SCHEMA", "TABLE", "COLUMNS", "REF"}, rows)
		return nil
	}

	for _, t := range tables {
		r.Header(2, t.Schema+"."+t.Name)
		rows := make([][]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			rows = append(rows, []string{
				strconv.Itoa(int(c.ID)),
				c.Name,
				c.Type,
				yesNo(c.Nullable),
				yesNo(c.Primary),
			})
		}
		r.Table([]string{"ID", "COLUMN", "TYPE", "NULLABLE", "PRIMARY KEY"}, rows)
		r.Println()
	}
	return nil
}

// selectTables returns the catalog tables matching filter, or all of them
// when filter is empty. A filter entry is "table" or "schema.table".
func selectTables(cat *catalog.RootCatalog, filter []string) ([]TableInfo, error) {
	entries := cat.ListTables()

	want := make(map[string]bool, len(filter))
	for _, f := range filter {
		want[strings.ToLower(f)] = true
	}
	matched := make(map[string]bool, len(filter))

	var out []TableInfo
	for _, e := range entries {
		name := e.Table.Name()
		qualified := e.Schema + "." + name
		if len(want) > 0 {
			switch {
			case want[qualified]:
				matched[qualified] = true
			case want[name]:
				matched[name] = true
			default:
				continue
			}
		}
		out = append(out, tableInfo(e))
	}

	for _, f := range filter {
		if !matched[strings.ToLower(f)] {
			return nil, fmt.Errorf("table %s not found in catalog", f)
		}
	}
	return out, nil
}

func tableInfo(e catalog.TableEntry) TableInfo {
	cols := e.Table.Columns()
	info := TableInfo{
		Schema:  e.Schema,
		Name:    e.Table.Name(),
		Ref:     e.Ref,
		Columns: make([]ColumnInfo, 0, len(cols)),
	}
	for _, c := range cols {
		info.Columns = append(info.Columns, ColumnInfo{
			ID:       c.ID,
			Name:     c.Desc.Name,
			Type:     c.Desc.DataType.String(),
			Nullable: c.Desc.IsNullable(),
			Primary:  c.Desc.IsPrimary,
		})
	}
	return info
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
