// Package adapter provides the registry and shared plumbing for database
// adapters that introspect live catalogs.
//
// leapbind never executes user statements against a target. Adapters only
// list tables and describe their columns so that a catalog snapshot can be
// built for binding. Concrete adapters live in pkg/adapters subdirectories
// and register themselves from init.
package adapter

import "github.com/leapstack-labs/leapbind/pkg/core"

// Type aliases so adapter implementations only import this package.
type (
	// Adapter is an alias for core.Adapter.
	Adapter = core.Adapter

	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata
)
