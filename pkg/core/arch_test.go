package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// coreImports returns the import paths of every non-test file in pkg/core.
func coreImports(t *testing.T) map[string][]string {
	t.Helper()

	entries, err := os.ReadDir(".")
	require.NoError(t, err)

	fset := token.NewFileSet()
	imports := make(map[string][]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(".", name), nil, parser.ImportsOnly)
		require.NoError(t, err, name)
		for _, imp := range f.Imports {
			imports[name] = append(imports[name], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return imports
}

// TestCoreImportsOnly verifies pkg/core imports only pkg/token and stdlib,
// so the parser, binder and adapters can all depend on it.
func TestCoreImportsOnly(t *testing.T) {
	allowed := map[string]bool{
		"github.com/leapstack-labs/leapbind/pkg/token": true,
	}

	for file, paths := range coreImports(t) {
		for _, p := range paths {
			if !strings.Contains(p, ".") {
				continue // stdlib
			}
			if !allowed[p] {
				t.Errorf("%s imports forbidden package: %s", file, p)
			}
		}
	}
}

func TestCoreDoesNotImportInternal(t *testing.T) {
	for file, paths := range coreImports(t) {
		for _, p := range paths {
			if strings.Contains(p, "/internal/") {
				t.Errorf("%s imports internal package: %s", file, p)
			}
		}
	}
}
