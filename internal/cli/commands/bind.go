package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbind/internal/cli/output"
	"github.com/leapstack-labs/leapbind/pkg/binder"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/parser"
)

// BoundResult is the JSON shape of one bound statement.
type BoundResult struct {
	Kind      string                `json:"kind"`
	Statement binder.BoundStatement `json:"statement"`
}

// NewBindCommand creates the bind command.
func NewBindCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "bind [SQL]",
		Short: "Bind SQL statements against the catalog",
		Long: `Parse and bind SQL statements against the configured catalog and print
the bound tree of every statement.

SQL is taken from the argument, from --file, or from stdin.
CREATE TABLE and DROP statements take effect for the statements after them.`,
		Example: `  leapbind bind "SELECT id, name FROM users WHERE id = 1"
  leapbind bind -f queries.sql -o json
  echo "SELECT 1" | leapbind bind`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}

			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runBind(cmd.Context(), cc, sql)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read SQL from file")

	return cmd
}

// readSQL returns the statement text from args, a file, or r in that order.
func readSQL(r io.Reader, file string, args []string) (string, error) {
	switch {
	case len(args) > 0 && file != "":
		return "", fmt.Errorf("cannot use both a SQL argument and --file")
	case len(args) > 0:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file) //nolint:gosec // user-supplied path is intended
		if err != nil {
			return "", fmt.Errorf("failed to read SQL file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no SQL provided")
	}
	return string(data), nil
}

// bindSQL parses sql and binds every statement. Scripts containing DDL are
// bound in order against a private copy of cat; otherwise statements are
// bound concurrently against cat itself.
func bindSQL(ctx context.Context, cat *catalog.RootCatalog, sql string, concurrency int, logger *slog.Logger) ([]binder.BoundStatement, error) {
	stmts, err := parser.ParseScript(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, nil
	}

	if binder.HasDDL(stmts) {
		logger.Debug("binding script in order", "statements", len(stmts))
		return binder.BindScript(ctx, cat.Clone(), stmts)
	}
	logger.Debug("binding statements concurrently", "statements", len(stmts), "concurrency", concurrency)
	return binder.BindAll(ctx, cat, stmts, concurrency)
}

func runBind(ctx context.Context, cc *CommandContext, sql string) error {
	bound, err := bindSQL(ctx, cc.Catalog, sql, cc.Cfg.Concurrency, cc.Logger)
	if err != nil {
		return err
	}
	renderBound(cc.Renderer, bound)
	return nil
}

func renderBound(r *output.Renderer, bound []binder.BoundStatement) {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		results := make([]BoundResult, len(bound))
		for i, b := range bound {
			results[i] = BoundResult{Kind: b.Kind(), Statement: b}
		}
		_ = r.JSON(results)
	case output.ModeMarkdown:
		for i, b := range bound {
			r.Println(output.FormatHeader(2, fmt.Sprintf("Statement %d: %s", i+1, b.Kind())))
			r.Println()
			r.Println(output.FormatCodeBlock("", binder.Format(b)))
			r.Println()
		}
	default:
		for i, b := range bound {
			if len(bound) > 1 {
				r.Header(2, fmt.Sprintf("-- statement %d (%s)", i+1, b.Kind()))
			}
			r.Printf("%s", binder.Format(b))
		}
	}
}
