package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapbind/internal/cli/output"
	"github.com/leapstack-labs/leapbind/internal/loader"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
)

// ErrCheckFailed is returned when at least one file fails to bind.
var ErrCheckFailed = errors.New("check failed")

// FileResult is the outcome of binding one SQL file.
type FileResult struct {
	File       string `json:"file"`
	Statements int    `json:"statements"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Bind every .sql file under the given paths",
		Long: `Bind every .sql file found under the given files and directories and
report which files bind cleanly.

Files are checked concurrently. With --watch, the check re-runs whenever a
.sql file or the catalog file changes.`,
		Example: `  leapbind check queries/
  leapbind check a.sql b.sql -o json
  leapbind check --watch queries/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return runCheckWatch(ctx, cc, args)
			}
			return runCheck(cmd.Context(), cc, args, false)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run the check when files change")

	return cmd
}

// runCheck binds the files under paths and renders the results, as a table
// or, when compact, one status line per file.
func runCheck(ctx context.Context, cc *CommandContext, paths []string, compact bool) error {
	files, err := collectSQLFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cc.Renderer.Warning("no .sql files found")
		return nil
	}
	results := checkFiles(ctx, cc.Catalog, files, cc.Cfg.Concurrency, cc.Logger)
	if compact && cc.Renderer.EffectiveMode() != output.ModeJSON {
		for _, r := range results {
			if r.OK {
				cc.Renderer.StatusLine(r.File, "success", fmt.Sprintf("%d statements", r.Statements))
			} else {
				cc.Renderer.StatusLine(r.File, "error", r.Error)
			}
		}
	} else {
		renderResults(cc.Renderer, results)
	}

	for _, r := range results {
		if !r.OK {
			return ErrCheckFailed
		}
	}
	return nil
}

// collectSQLFiles expands directories into the .sql files below them.
// Explicit file arguments are kept whatever their extension. The result is
// sorted and free of duplicates.
func collectSQLFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot check %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".sql" {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// checkFiles binds each file on its own, at most concurrency files at a
// time. A failing file does not stop the others.
func checkFiles(ctx context.Context, cat *catalog.RootCatalog, files []string, concurrency int, logger *slog.Logger) []FileResult {
	results := make([]FileResult, len(files))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, file := range files {
		g.Go(func() error {
			results[i] = checkFile(ctx, cat, file, logger)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func checkFile(ctx context.Context, cat *catalog.RootCatalog, file string, logger *slog.Logger) FileResult {
	res := FileResult{File: file}

	data, err := os.ReadFile(file) //nolint:gosec // paths come from the command line
	if err != nil {
		res.Error = err.Error()
		return res
	}

	bound, err := bindSQL(ctx, cat, string(data), 1, logger)
	res.Statements = len(bound)
	if err != nil {
		logger.Debug("file failed to bind", "file", file, "error", err)
		res.Error = err.Error()
		return res
	}
	res.OK = true
	return res
}

func renderResults(r *output.Renderer, results []FileResult) {
	failed := 0
	for _, res := range results {
		if !res.OK {
			failed++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(results)
		return
	}

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "ok"
		if !res.OK {
			status = "error"
		}
		rows = append(rows, []string{res.File, strconv.Itoa(res.Statements), status, res.Error})
	}
	r.Table([]string{"FILE", "STATEMENTS", "STATUS", "ERROR"}, rows)

	summary := fmt.Sprintf("%d files checked, %d failed", len(results), failed)
	if failed > 0 {
		r.Error(summary)
		return
	}
	r.Success(summary)
}

// runCheckWatch runs the check once, then again after every burst of changes
// to a watched .sql file or to the catalog file, until ctx is done.
func runCheckWatch(ctx context.Context, cc *CommandContext, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range paths {
		if err := watchPath(watcher, p); err != nil {
			return err
		}
	}
	if cc.Cfg.Catalog != "" {
		if err := watcher.Add(filepath.Dir(cc.Cfg.Catalog)); err != nil {
			cc.Logger.Warn("cannot watch catalog directory", "path", cc.Cfg.Catalog, "error", err)
		}
	}

	rerun := make(chan bool, 1)
	var debounceTimer *time.Timer
	reloadCatalog := false

	check := func() {
		if err := runCheck(ctx, cc, paths, true); err != nil && !errors.Is(err, ErrCheckFailed) {
			cc.Renderer.Error(err.Error())
		}
		cc.Renderer.Muted("watching for changes (Ctrl+C to stop)")
	}
	check()

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchPath(watcher, event.Name)
					continue
				}
			}
			isCatalog := cc.Cfg.Catalog != "" && filepath.Clean(event.Name) == filepath.Clean(cc.Cfg.Catalog)
			if !isCatalog && filepath.Ext(event.Name) != ".sql" {
				continue
			}
			if isCatalog {
				reloadCatalog = true
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(cc.Cfg.WatchDebounce, func() {
				select {
				case rerun <- true:
				default:
				}
			})

		case <-rerun:
			if reloadCatalog {
				reloadCatalog = false
				cat, err := loader.Snapshot(ctx, cc.Cfg.Project(), cc.Cfg.Concurrency, cc.Logger)
				if err != nil {
					cc.Renderer.Error(fmt.Sprintf("catalog reload failed: %v", err))
					continue
				}
				cc.Catalog = cat
				cc.Logger.Debug("catalog reloaded", "path", cc.Cfg.Catalog)
			}
			check()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}

// watchPath adds p to the watcher; directories are added recursively and a
// file is watched through its parent directory.
func watchPath(watcher *fsnotify.Watcher, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", p, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(p))
	}
	return filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
