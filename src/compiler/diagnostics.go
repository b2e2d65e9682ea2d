package compiler

import (
	"fmt"
	"sync"

	"github.com/M1778/fin/src/ast"
)

// Diagnostic is a single compiler error or warning, carrying enough source
// position to point a user at the offending construct plus an optional
// hint suggesting a fix (spec §7 error kinds).
type Diagnostic struct {
	Kind    string
	Pos     ast.Position
	Message string
	Hint    string
}

func (d Diagnostic) Error() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s (%s)", d.Pos.File, d.Pos.Line, d.Pos.Col, d.Kind, d.Message, d.Hint)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Pos.File, d.Pos.Line, d.Pos.Col, d.Kind, d.Message)
}

// Error kinds named in spec §7.
const (
	ErrUnresolvedSymbol   = "unresolved-symbol"
	ErrTypeMismatch       = "type-mismatch"
	ErrAmbiguousOverload  = "ambiguous-overload"
	ErrCyclicImport       = "cyclic-import"
	ErrInvalidConstraint  = "invalid-constraint"
	ErrDuplicateDecl      = "duplicate-declaration"
	ErrVisibilityViolation = "visibility-violation"
	ErrMissingReturn      = "missing-return"
	ErrShape              = "shape-error"
)

// Diagnostics records compiler errors raised during lowering. Compilation is
// sequential and fail-fast (spec §7): a lowering routine returns its error up
// the call stack as soon as Err builds it, so in practice at most one
// diagnostic is ever recorded before compilation unwinds. The mutex guards
// against Add/All being called from deferred cleanup paths, not concurrent
// compilation.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

func NewDiagnostics() *Diagnostics { return &Diagnostics{} }

func (d *Diagnostics) Add(kind string, pos ast.Position, message, hint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, Diagnostic{Kind: kind, Pos: pos, Message: message, Hint: hint})
}

// Err builds and records a diagnostic, returning it as an error so call
// sites can `return c.Diags.Err(...)` directly.
func (d *Diagnostics) Err(kind string, pos ast.Position, message, hint string) error {
	diag := Diagnostic{Kind: kind, Pos: pos, Message: message, Hint: hint}
	d.mu.Lock()
	d.items = append(d.items, diag)
	d.mu.Unlock()
	return diag
}

func (d *Diagnostics) HasErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items) > 0
}

func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}
