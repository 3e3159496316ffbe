package adapter

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Factory creates an unconnected adapter. A nil logger means discard.
type Factory func(*slog.Logger) Adapter

// ErrUnknownType is returned by Open for a type no adapter registered.
var ErrUnknownType = errors.New("unknown adapter type")

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes an adapter available under name, matched without regard
// to case. Adapters call it from init. A later registration of the same
// name replaces the earlier one.
func Register(name string, factory Factory) {
	if name == "" || factory == nil {
		panic(errors.AssertionFailedf("adapter: Register needs a name and a factory"))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[strings.ToLower(name)] = factory
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := factories[strings.ToLower(name)]
	return f, ok
}

// Names returns the registered adapter names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates an unconnected adapter for cfg.Type.
func Open(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, errors.New("adapter type not specified")
	}
	factory, ok := Lookup(cfg.Type)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%q (available: %s)", cfg.Type, strings.Join(Names(), ", "))
	}
	return factory(logger), nil
}
