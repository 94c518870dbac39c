// Package shader assembles modular WGSL library fragments into complete
// program sources. Modules are registered by name; include directives of
// the form `#include "name"` or `#include <name>` are resolved
// recursively, with cycle detection over the active inclusion path and
// caching of composed output keyed by the original source text.
package shader

// Module is a named, reusable fragment of shader source.
type Module struct {
	// Name uniquely identifies the module within a composer.
	// Registering a second module under the same name overwrites the
	// first and invalidates every cached composition.
	Name string

	// Source is the module body. It may itself contain include
	// directives, which are resolved recursively.
	Source string

	// Dependencies lists module names this module is known to include.
	// Informational only; resolution is driven by the directives found
	// in Source, not by this list.
	Dependencies []string

	// Version is a free-form version marker.
	Version string

	// Description says what the module provides.
	Description string
}

// ModuleInfo is the introspection view of a registered module.
type ModuleInfo struct {
	Name         string
	Version      string
	Description  string
	Dependencies []string
	SourceBytes  int
}
