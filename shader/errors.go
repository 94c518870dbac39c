package shader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyModuleName is returned when registering a module without a name.
var ErrEmptyModuleName = errors.New("shader: module name must not be empty")

// CircularDependencyError reports a cycle in the include graph.
// Chain holds the inclusion path in order, ending with the module whose
// re-inclusion closed the cycle.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return "shader: circular include: " + strings.Join(e.Chain, " -> ")
}

// ModuleNotFoundError reports an include directive naming a module that
// is neither registered nor supplied by the resolver callback.
type ModuleNotFoundError struct {
	// Name is the missing module.
	Name string
	// Chain is the inclusion path that led to the missing module.
	// Empty when the directive appears in the top-level source.
	Chain []string
}

func (e *ModuleNotFoundError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("shader: module %q not found", e.Name)
	}
	return fmt.Sprintf("shader: module %q not found (included via %s)",
		e.Name, strings.Join(e.Chain, " -> "))
}

// UnresolvedIncludeError reports include directives that survived
// composition. This indicates a resolver bug, not bad input, and is
// always fatal.
type UnresolvedIncludeError struct {
	Directives []string
}

func (e *UnresolvedIncludeError) Error() string {
	return "shader: unresolved include directives after composition: " +
		strings.Join(e.Directives, ", ")
}
