// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/naga"

	"github.com/gogpu/darkroom/internal/cache"
)

// includeRe matches an include directive with either quote or angle
// bracket delimiters. The directive text is submatch 0; the module name
// is submatch 1 (quotes) or 2 (brackets).
var includeRe = regexp.MustCompile(`#include\s+(?:"([^"]+)"|<([^>]+)>)`)

// compositionCacheLimit bounds the number of cached compositions. A
// pipeline has a handful of programs; 256 leaves generous headroom for
// dynamically registered effects.
const compositionCacheLimit = 256

// Resolver supplies module source for names not found in the registry,
// for modules sourced dynamically (user presets, downloaded LUT packs).
// It returns the source and true, or "" and false if the name is unknown.
type Resolver func(name string) (source string, ok bool)

// Option configures a Composer during creation.
type Option func(*Composer)

// WithResolver installs a fallback resolver consulted when an included
// module is not in the registry.
func WithResolver(r Resolver) Option {
	return func(c *Composer) { c.resolver = r }
}

// WithDebugComments wraps every substituted module body in begin/end
// comment markers. Useful when dumping composed sources for debugging;
// off by default so composition is byte-exact.
func WithDebugComments() Option {
	return func(c *Composer) { c.debugComments = true }
}

// WithoutBuiltins creates the composer with an empty registry instead of
// the built-in library modules.
func WithoutBuiltins() Option {
	return func(c *Composer) { c.skipBuiltins = true }
}

// WithoutCache disables composition caching. Every Compose call then
// re-resolves from scratch; intended for tests and tooling.
func WithoutCache() Option {
	return func(c *Composer) { c.cacheEnabled = false }
}

// Composer resolves include directives against a module registry,
// producing complete program sources.
//
// A Composer's registry has a single-writer-at-a-time contract: module
// registration and composition are individually synchronized, but the
// pipeline executor is expected to be the only goroutine driving
// composition for a given instance.
type Composer struct {
	mu      sync.Mutex
	modules map[string]Module

	compCache    *cache.Cache[string, string]
	cacheEnabled bool

	resolver      Resolver
	debugComments bool
	skipBuiltins  bool
}

// NewComposer creates a composer with the built-in library modules
// registered (colorspace, tonemap, gamut, noise).
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		modules:      make(map[string]Module),
		compCache:    cache.New[string, string](compositionCacheLimit),
		cacheEnabled: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.skipBuiltins {
		registerBuiltins(c)
	}
	return c
}

// RegisterModule stores a module, overwriting any module with the same
// name. Every cached composition is invalidated, not just the ones that
// reference this module: compositions do not track which modules they
// expanded, and correctness wins over recomposition cost here.
func (c *Composer) RegisterModule(m Module) error {
	if m.Name == "" {
		return ErrEmptyModuleName
	}

	c.mu.Lock()
	c.modules[m.Name] = m
	c.mu.Unlock()

	c.compCache.Clear()
	return nil
}

// Compose resolves all include directives in source, recursively, and
// returns the complete program text. Results are cached keyed by the
// original source string; any module (re)registration invalidates the
// cache. Source without directives is returned unchanged.
func (c *Composer) Compose(source string) (string, error) {
	return c.compose(source, nil)
}

// CreateShader prepends one include directive per module name to the
// fragment source, then composes. This is the form the pipeline
// executor uses: a pass declares its library dependencies as names and
// supplies only its own body.
func (c *Composer) CreateShader(fragmentSource string, includes ...string) (string, error) {
	if len(includes) == 0 {
		return c.Compose(fragmentSource)
	}
	var b strings.Builder
	for _, name := range includes {
		b.WriteString("#include \"")
		b.WriteString(name)
		b.WriteString("\"\n")
	}
	b.WriteString("\n")
	b.WriteString(fragmentSource)
	return c.Compose(b.String())
}

// Validate compiles the composed WGSL source with naga and returns any
// compile error. This is opt-in: composition itself is textual and does
// not require a shader compiler.
func (c *Composer) Validate(source string) error {
	if _, err := naga.Compile(source); err != nil {
		return fmt.Errorf("shader: validation failed: %w", err)
	}
	return nil
}

// ClearCache drops all cached compositions. Registered modules are kept.
func (c *Composer) ClearCache() {
	c.compCache.Clear()
}

// CacheStats returns composition cache statistics.
func (c *Composer) CacheStats() cache.Stats {
	return c.compCache.Stats()
}

// ModuleInfo returns the registered modules, sorted by name.
func (c *Composer) ModuleInfo() []ModuleInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	infos := make([]ModuleInfo, 0, len(c.modules))
	for _, m := range c.modules {
		infos = append(infos, ModuleInfo{
			Name:         m.Name,
			Version:      m.Version,
			Description:  m.Description,
			Dependencies: append([]string(nil), m.Dependencies...),
			SourceBytes:  len(m.Source),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// compose is the recursive resolution step. path is the chain of module
// names currently being expanded on this call stack; each branch gets
// its own copy, so diamond-shaped include graphs resolve fine and only
// true cycles are rejected.
func (c *Composer) compose(source string, path []string) (string, error) {
	if c.cacheEnabled {
		if cached, ok := c.compCache.Get(source); ok {
			return cached, nil
		}
	}

	result := source
	substituted := make(map[string]bool)

	for _, m := range includeRe.FindAllStringSubmatch(source, -1) {
		directive := m[0]
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if substituted[directive] {
			continue
		}
		substituted[directive] = true

		for _, p := range path {
			if p == name {
				chain := append(append([]string(nil), path...), name)
				return "", &CircularDependencyError{Chain: chain}
			}
		}

		body, ok := c.lookup(name)
		if !ok {
			return "", &ModuleNotFoundError{Name: name, Chain: append([]string(nil), path...)}
		}

		branch := append(append([]string(nil), path...), name)
		resolved, err := c.compose(body, branch)
		if err != nil {
			return "", err
		}
		if c.debugComments {
			resolved = "// begin include: " + name + "\n" + resolved + "\n// end include: " + name
		}

		result = strings.ReplaceAll(result, directive, resolved)
	}

	if leftover := includeRe.FindAllString(result, -1); len(leftover) > 0 {
		return "", &UnresolvedIncludeError{Directives: leftover}
	}

	if opens, closes := strings.Count(result, "{"), strings.Count(result, "}"); opens != closes {
		slogger().Warn("composed shader has unbalanced braces",
			"open", opens, "close", closes, "path", strings.Join(path, "/"))
	}

	if c.cacheEnabled {
		c.compCache.Set(source, result)
	}
	return result, nil
}

// lookup finds a module body in the registry, falling back to the
// resolver callback.
func (c *Composer) lookup(name string) (string, bool) {
	c.mu.Lock()
	m, ok := c.modules[name]
	c.mu.Unlock()
	if ok {
		return m.Source, true
	}
	if c.resolver != nil {
		return c.resolver(name)
	}
	return "", false
}
