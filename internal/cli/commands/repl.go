package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbind/pkg/binder"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/parser"
)

const (
	replPrompt         = "leapbind> "
	replContinuePrompt = "    ...> "
	historyFileName    = ".leapbind_history"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Bind SQL interactively",
		Long: `Start an interactive session that binds each statement against the catalog
and prints its bound tree.

Statements end with a semicolon and may span lines. CREATE TABLE and DROP
change the session's copy of the catalog only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runREPL(cmd.Context(), cc)
		},
	}
}

func runREPL(ctx context.Context, cc *CommandContext) error {
	sess := newREPLSession(cc)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyPath(cc.Cfg.ProjectRoot),
		AutoComplete:    sessionCompleter{sess},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cc.Renderer.Writer(),
		Stderr:          cc.Renderer.ErrWriter(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Renderer.Printf("leapbind REPL (%d tables)\n", len(sess.cat.ListTables()))
	cc.Renderer.Println("Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sess.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if sess.handleLine(ctx, line) {
			return nil
		}
		if sess.buf.Len() > 0 {
			rl.SetPrompt(replContinuePrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// historyPath keeps history next to the project config, or in the home
// directory when there is no project.
func historyPath(projectRoot string) string {
	if projectRoot != "" {
		return filepath.Join(projectRoot, historyFileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, historyFileName)
	}
	return ""
}

// replSession holds the state of one interactive session: its private
// catalog copy and any partially entered statement.
type replSession struct {
	cc  *CommandContext
	cat *catalog.RootCatalog
	buf strings.Builder
}

func newREPLSession(cc *CommandContext) *replSession {
	return &replSession{cc: cc, cat: cc.Catalog.Clone()}
}

// handleLine processes one input line and reports whether the session
// should end.
func (s *replSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false
	}

	sql := s.buf.String()
	s.buf.Reset()

	if err := s.bind(ctx, sql); err != nil {
		s.cc.Renderer.Error(err.Error())
	}
	s.cc.Renderer.Println()
	return false
}

// bind binds sql against the session catalog. DDL in a failing script is
// applied up to the failing statement.
func (s *replSession) bind(ctx context.Context, sql string) error {
	stmts, err := parser.ParseScript(sql)
	if err != nil {
		return err
	}
	bound, err := binder.BindScript(ctx, s.cat, stmts)
	if err != nil {
		return err
	}
	renderBound(s.cc.Renderer, bound)
	return nil
}

func (s *replSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	r := s.cc.Renderer

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".tables":
		tables, _ := selectTables(s.cat, nil)
		rows := make([][]string, 0, len(tables))
		for _, t := range tables {
			rows = append(rows, []string{t.Schema, t.Name})
		}
		r.Table([]string{"SCHEMA", "TABLE"}, rows)

	case ".schema":
		if len(parts) < 2 {
			r.Error("usage: .schema <table>")
			return false
		}
		sub := &CommandContext{Cfg: s.cc.Cfg, Logger: s.cc.Logger, Catalog: s.cat, Renderer: r}
		if err := runCatalog(sub, parts[1:], true); err != nil {
			r.Error(err.Error())
		}

	case ".functions":
		var category binder.FunctionCategory
		if len(parts) > 1 {
			category = binder.FunctionCategory(strings.ToLower(parts[1]))
		}
		rows := functionRows(category)
		if len(rows) == 0 {
			r.Error(fmt.Sprintf("no functions in category %s", category))
			return false
		}
		r.Table([]string{"FUNCTION", "CATEGORY", "SIGNATURE", "DESCRIPTION"}, rows)

	case ".clear":
		r.Printf("\033[H\033[2J")

	default:
		r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", parts[0]))
	}
	return false
}

// functionRows lists the binder's functions, all of them when category is
// empty.
func functionRows(category binder.FunctionCategory) [][]string {
	var rows [][]string
	for _, fn := range binder.Functions {
		if category != "" && fn.Category != category {
			continue
		}
		rows = append(rows, []string{fn.Name, string(fn.Category), fn.Signature, fn.Description})
	}
	return rows
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List all tables
  .schema <table>  Show the columns of a table
  .functions [cat] List known functions, optionally of one category
  .clear           Clear the screen
  .quit / .exit    Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// sessionCompleter rebuilds the completion tree on every request so tables
// created during the session are offered too.
type sessionCompleter struct{ s *replSession }

func (c sessionCompleter) Do(line []rune, pos int) ([][]rune, int) {
	return c.s.completer().Do(line, pos)
}

// completer offers the session's table names and the dot-commands.
func (s *replSession) completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, e := range s.cat.ListTables() {
		items = append(items, readline.PcItem(e.Table.Name()))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".functions",
			readline.PcItem(string(binder.CategoryAggregate)),
			readline.PcItem(string(binder.CategoryNumeric)),
			readline.PcItem(string(binder.CategoryString)),
			readline.PcItem(string(binder.CategoryConditional)),
		),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
