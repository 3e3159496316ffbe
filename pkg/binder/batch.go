package binder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
)

// BindAll binds independent statements concurrently against one catalog
// snapshot, using at most limit goroutines (no limit when limit <= 0).
// Results are in input order. The first failure cancels the remaining work
// and is returned with the 1-based statement number.
func BindAll(ctx context.Context, cat catalog.Reader, stmts []core.Stmt, limit int) ([]BoundStatement, error) {
	out := make([]BoundStatement, len(stmts))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, stmt := range stmts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bound, err := New(cat).Bind(stmt)
			if err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
			out[i] = bound
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// BindScript binds statements in order, applying each CREATE TABLE and DROP
// TABLE to cat before the next statement is bound.
func BindScript(ctx context.Context, cat *catalog.RootCatalog, stmts []core.Stmt) ([]BoundStatement, error) {
	out := make([]BoundStatement, 0, len(stmts))
	b := New(cat)
	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bound, err := b.Bind(stmt)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
		if err := ApplyDDL(cat, bound); err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
		out = append(out, bound)
	}
	return out, nil
}

// ApplyDDL records the effect of a bound CREATE TABLE or DROP TABLE in cat.
// Other statements are ignored.
func ApplyDDL(cat *catalog.RootCatalog, stmt BoundStatement) error {
	switch s := stmt.(type) {
	case *BoundCreateTable:
		dbID, _ := cat.DatabaseByName(catalog.DefaultDatabaseName)
		if _, _, exists := cat.TableByName(dbID, s.SchemaID, s.Name); exists {
			if s.IfNotExists {
				return nil
			}
			return fmt.Errorf("table %s.%s already exists", s.Schema, s.Name)
		}
		if _, err := cat.AddTable(s.Schema, s.Name, s.Columns); err != nil {
			return fmt.Errorf("create table %s.%s: %w", s.Schema, s.Name, err)
		}
	case *BoundDrop:
		for _, t := range s.Tables {
			if t.Missing {
				continue
			}
			if err := cat.DropTable(t.Ref); err != nil {
				return fmt.Errorf("drop table %s.%s: %w", t.Schema, t.Name, err)
			}
		}
	case *BoundExplain:
		// EXPLAIN does not run its statement.
	}
	return nil
}

// HasDDL reports whether any statement changes the catalog.
func HasDDL(stmts []core.Stmt) bool {
	for _, s := range stmts {
		switch s.(type) {
		case *core.CreateTableStmt, *core.DropStmt:
			return true
		}
	}
	return false
}
