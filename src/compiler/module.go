package compiler

import (
	"fmt"
	"path/filepath"

	"github.com/M1778/fin/src/ast"
)

// moduleInfo is the cached result of fully compiling one source file: its
// public namespace (the module scope after compilation) plus a visibility
// map so later imports can reject private access (spec §4.4).
type moduleInfo struct {
	scope   *Scope
	public  map[string]bool
	path    string
}

// Loader implements the module loader and import system of spec §4.4: path
// resolution, cycle detection via a visiting set, a compiled-module cache,
// and symbol merging with target lists and aliases.
type Loader struct {
	c *Compiler

	visiting map[string]bool
	cache    map[string]*moduleInfo
	aliases  map[string]string // module alias -> absolute path
}

func NewLoader(c *Compiler) *Loader {
	return &Loader{
		c:        c,
		visiting: make(map[string]bool),
		cache:    make(map[string]*moduleInfo),
		aliases:  make(map[string]string),
	}
}

// ResolvePath maps an import source string and the importing file to an
// absolute path, per spec §4.4 rule 1.
func (l *Loader) ResolvePath(root, fromFile, importSrc string) string {
	if filepath.IsAbs(importSrc) {
		return filepath.Clean(importSrc)
	}
	rel := filepath.Join(filepath.Dir(fromFile), importSrc)
	if !hasFinExt(rel) {
		rel += ".fin"
	}
	return filepath.Clean(rel)
}

func hasFinExt(p string) bool { return filepath.Ext(p) == ".fin" }

// compileProgram compiles every declaration of prog's AST into scope, which
// becomes the module's public namespace once finished. It is the single
// entry point used both for the root program and for a freshly visited
// import.
func (l *Loader) compileProgram(prog *ast.Program, scope *Scope) error {
	savedFile := l.c.CurrentFile
	savedScope := l.c.CurrentScope
	l.c.CurrentFile = prog.Path
	l.c.CurrentScope = scope
	defer func() {
		l.c.CurrentFile = savedFile
		l.c.CurrentScope = savedScope
	}()

	// Pass 0: forward-declare every struct/interface/enum/function/extern so
	// forward references and mutual recursion resolve (spec §4.5, §4.6).
	for _, d := range prog.Decls {
		if err := l.c.declarePass(d); err != nil {
			return err
		}
	}
	// Pass 1: compile bodies.
	for _, d := range prog.Decls {
		if err := l.c.definePass(d); err != nil {
			return err
		}
	}
	return nil
}

// Load resolves, (if needed) compiles, and caches the module at importSrc as
// seen from fromFile, implementing spec §4.4 rules 2-4: cycle detection via
// the visiting set, caching, and the push/compile/pop sequence for a fresh
// module.
func (l *Loader) Load(fromFile, importSrc string, parse func(path string) (*ast.Program, error)) (*moduleInfo, error) {
	path := l.ResolvePath(l.c.Root, fromFile, importSrc)

	if mi, ok := l.cache[path]; ok {
		return mi, nil
	}
	if l.visiting[path] {
		// Cycle: trust the partial module's forward-declared interface rather
		// than failing. The caller gets whatever is currently in the cache,
		// possibly empty; Pass 0 prototypes are sufficient for most imports.
		return &moduleInfo{scope: NewGlobalScope(), public: map[string]bool{}, path: path}, nil
	}

	prog, err := parse(path)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", importSrc, err)
	}

	l.visiting[path] = true
	moduleScope := NewScope(nil) // no parent: the entry module's global scope is not visible here
	err = l.compileProgram(prog, moduleScope)
	delete(l.visiting, path)
	if err != nil {
		return nil, err
	}

	mi := &moduleInfo{scope: moduleScope, public: l.c.publicNames(prog), path: path}
	l.cache[path] = mi
	return mi, nil
}

// Merge implements spec §4.4 rule 5: installs symbols from an imported
// module into dest, either by explicit target list (value symbols copied
// directly; type names become aliases to the mangled name) or, absent a
// target list, only registers the module alias (strict-mode: no implicit
// symbol injection).
func (l *Loader) Merge(dest *Scope, mi *moduleInfo, targets []ast.ImportTarget, alias string) error {
	for _, t := range targets {
		name := t.Name
		bound := t.Name
		if t.Alias != "" {
			bound = t.Alias
		}
		if !mi.public[name] {
			return l.c.Diags.Err(ErrVisibilityViolation, ast.Position{File: mi.path},
				fmt.Sprintf("%q is not public in %s", name, mi.path), "mark the symbol public to import it")
		}
		if v, ft, ok := mi.scope.Resolve(name); ok {
			dest.Define(bound, v, ft)
			continue
		}
		// Not a value symbol: treat as a type name and register an alias so
		// convert_type(bound) resolves through to the imported mangled name.
		dest.DefineTypeAlias(bound, l.c.Mangle(mi.path, name))
	}
	if alias != "" {
		l.aliases[alias] = mi.path
	}
	return nil
}

// ResolveAlias returns the cached module for a registered module alias, used
// by module-qualified expressions (`alias.Symbol`) and type references
// (`alias.Name`).
func (l *Loader) ResolveAlias(alias string) (*moduleInfo, bool) {
	path, ok := l.aliases[alias]
	if !ok {
		return nil, false
	}
	mi, ok := l.cache[path]
	return mi, ok
}

// publicNames walks a compiled program's top-level declarations and reports
// which names carry public visibility (spec §4.4 "Import visibility").
func (c *Compiler) publicNames(prog *ast.Program) map[string]bool {
	out := make(map[string]bool)
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.VarDecl:
			if n.Vis == ast.Public {
				out[n.Name] = true
			}
		case *ast.FuncDecl:
			if n.Vis == ast.Public {
				out[n.Name] = true
			}
		case *ast.StructDecl:
			if n.Vis == ast.Public {
				out[n.Name] = true
			}
		case *ast.InterfaceDecl:
			if n.Vis == ast.Public {
				out[n.Name] = true
			}
		case *ast.EnumDecl:
			if n.Vis == ast.Public {
				out[n.Name] = true
			}
		case *ast.DefineDecl:
			out[n.Name] = true // externs are always visible
		}
	}
	return out
}
