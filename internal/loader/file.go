// Package loader builds catalog snapshots from YAML catalog files and from
// live database targets.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapbind/pkg/binder"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

// File is the YAML layout of a catalog file.
//
//	tables:
//	  - name: users
//	    schema: sales        # optional, defaults to postgres
//	    columns:
//	      - {name: id, type: INT, primary_key: true}
//	      - {name: email, type: VARCHAR, not_null: true}
type File struct {
	Schemas []string    `yaml:"schemas"`
	Tables  []TableSpec `yaml:"tables"`
}

// TableSpec describes one table of a catalog file.
type TableSpec struct {
	Schema  string       `yaml:"schema"`
	Name    string       `yaml:"name"`
	Columns []ColumnSpec `yaml:"columns"`
}

// ColumnSpec describes one column of a catalog file.
type ColumnSpec struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	NotNull    bool   `yaml:"not_null"`
	PrimaryKey bool   `yaml:"primary_key"`
}

// CatalogParseError is returned when a catalog file cannot be decoded or
// describes an invalid table.
type CatalogParseError struct {
	Path    string
	Message string
}

func (e *CatalogParseError) Error() string {
	if e.Path == "" {
		return "catalog: " + e.Message
	}
	return fmt.Sprintf("catalog %s: %s", e.Path, e.Message)
}

// LoadFile reads a catalog file into a fresh catalog.
func LoadFile(path string, logger *slog.Logger) (*catalog.RootCatalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	cat, err := Load(bytes.NewReader(data), logger)
	if err != nil {
		var perr *CatalogParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return cat, nil
}

// Load decodes a catalog file from r. Unknown keys are rejected.
func Load(r io.Reader, logger *slog.Logger) (*catalog.RootCatalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &CatalogParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	cat := catalog.New()
	if err := Apply(cat, &f); err != nil {
		return nil, err
	}
	logger.Debug("loaded catalog file", "tables", len(f.Tables))
	return cat, nil
}

// Apply adds the schemas and tables of f to cat. Names are folded to lower case.
func Apply(cat *catalog.RootCatalog, f *File) error {
	for _, s := range f.Schemas {
		cat.AddSchema(foldIdent(s))
	}

	for i, t := range f.Tables {
		if t.Name == "" {
			return &CatalogParseError{Message: fmt.Sprintf("table %d has no name", i+1)}
		}
		schema := catalog.DefaultSchemaName
		if t.Schema != "" {
			schema = foldIdent(t.Schema)
		}
		name := foldIdent(t.Name)

		descs := make([]catalog.ColumnDesc, 0, len(t.Columns))
		for _, c := range t.Columns {
			desc, err := columnDesc(c)
			if err != nil {
				return &CatalogParseError{Message: fmt.Sprintf("table %s.%s: %v", schema, name, err)}
			}
			descs = append(descs, desc)
		}

		cat.AddSchema(schema)
		if _, err := cat.AddTable(schema, name, descs); err != nil {
			return &CatalogParseError{Message: err.Error()}
		}
	}
	return nil
}

func columnDesc(c ColumnSpec) (catalog.ColumnDesc, error) {
	if c.Name == "" {
		return catalog.ColumnDesc{}, fmt.Errorf("column has no name")
	}
	if c.Type == "" {
		return catalog.ColumnDesc{}, fmt.Errorf("column %s has no type", c.Name)
	}
	dt, err := types.ParseTypeString(c.Type)
	if err != nil {
		return catalog.ColumnDesc{}, fmt.Errorf("column %s: %w", c.Name, err)
	}
	dt = dt.WithNullability(!c.NotNull && !c.PrimaryKey)
	return catalog.NewColumnDesc(foldIdent(c.Name), dt, c.PrimaryKey), nil
}

func foldIdent(s string) string {
	return binder.LowerCaseName(core.ObjectName{s})[0]
}
