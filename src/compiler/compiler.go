// Package compiler implements the Fin compiler core: AST-to-LLVM-IR lowering,
// generic monomorphization/erasure, struct and interface lowering with
// vtables, the module loader, and the boxing protocol for erased generics.
//
// The package mirrors the shape of the teacher driver (GenLLVM / a single
// threaded-through context / two-pass module compilation), generalized from
// one VSL source file to Fin's module graph, struct/interface system, and
// generics.
package compiler

import (
	"fmt"
	"path/filepath"
	"sync"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/util"
)

// Mode is the compilation policy chosen for a generic struct or function
// declaration (spec §4.5/§4.6, glossary "Mode").
type Mode int

const (
	ModeStandard Mode = iota
	ModeErased
	ModeMono
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "STANDARD"
	case ModeErased:
		return "ERASED"
	case ModeMono:
		return "MONO"
	}
	return "UNKNOWN"
}

// loopInfo carries the basic blocks break/continue branch to, per spec §4.3.
type loopInfo struct {
	condBlock llvm.BasicBlock
	endBlock  llvm.BasicBlock
}

// structInfo is the per-mangled-name registry entry built by struct lowering
// (spec §3 "Global registries").
type structInfo struct {
	llvmType       llvm.Type
	fieldIndex     map[string]int
	fieldDefault   map[string]ast.Expr
	fieldVis       map[string]ast.Visibility
	fieldType      map[string]ast.TypeExpr // source-level type, for unboxing
	genericParams  []string
	parents        []string // mangled parent struct names, in declaration order
	isInterface    bool
	interfaceOf    []*ast.InterfaceMethod // method signatures, when isInterface
	operators      map[string]string      // operator symbol -> mangled function name
	methods        map[string]*ast.FuncDecl
	mode           Mode
	decl           *ast.StructDecl
}

// enumInfo is the registry entry for a compiled enum declaration.
type enumInfo struct {
	members map[string]int64
}

// Compiler is the single context threaded through every lowering routine
// (spec §2). Exactly one exists per compilation; the module loader pushes
// and pops CurrentFile/CurrentScope as it recurses into imports.
type Compiler struct {
	Opt  util.Options
	Ctx  llvm.Context
	Mod  llvm.Module
	B    llvm.Builder // current IR builder.

	CurrentFunc        llvm.Value
	CurrentScope       *Scope
	CurrentFile        string // absolute path of the file presently being compiled.
	Root               string // project root used to compute mangling prefixes.
	currentStructName  string // mangled name of the struct whose method is being compiled, if any

	Diags *Diagnostics

	mu sync.Mutex // guards the registries below, which recursive import loading touches re-entrantly.

	structs  map[string]*structInfo
	enums    map[string]*enumInfo
	structTemplates  map[string]*ast.StructDecl
	functionTemplates map[string]*ast.FuncDecl
	monoStructCache   map[string]llvm.Type
	monoFunctionCache map[string]llvm.Value
	funcs             map[string]llvm.Value // mangled name -> declared/defined function
	strings           map[string]llvm.Value // interned global string constants
	vtables           map[string]llvm.Value // "<Struct>$<Interface>" -> global vtable array
	externs           map[string]struct{}   // names declared via `define`, unmangled
	specials          map[string]*ast.SpecialDecl
	macros            map[string]*ast.MacroDecl

	loader *Loader

	// ParseFile produces the AST for an imported file. The lexer/parser is an
	// external collaborator (spec §1 "out of scope"); the driver wires this in
	// from whatever front end it uses. A nil value means only the entry
	// Program passed to Compile can ever be compiled, i.e. single-file mode.
	ParseFile func(path string) (*ast.Program, error)
}

// New constructs a Compiler for a single compilation unit rooted at entry.
func New(opt util.Options) *Compiler {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(filepath.Base(opt.Src))
	c := &Compiler{
		Opt:   opt,
		Ctx:   ctx,
		Mod:   mod,
		B:     ctx.NewBuilder(),
		Root:  opt.Root,
		Diags: NewDiagnostics(),

		structs:           make(map[string]*structInfo),
		enums:             make(map[string]*enumInfo),
		structTemplates:   make(map[string]*ast.StructDecl),
		functionTemplates: make(map[string]*ast.FuncDecl),
		monoStructCache:   make(map[string]llvm.Type),
		monoFunctionCache: make(map[string]llvm.Value),
		funcs:             make(map[string]llvm.Value),
		strings:           make(map[string]llvm.Value),
		vtables:           make(map[string]llvm.Value),
		externs:           make(map[string]struct{}),
		specials:          make(map[string]*ast.SpecialDecl),
		macros:            make(map[string]*ast.MacroDecl),
	}
	c.CurrentScope = NewGlobalScope()
	c.loader = NewLoader(c)
	c.declareRuntime()
	return c
}

// Dispose releases the underlying LLVM context resources.
func (c *Compiler) Dispose() {
	c.B.Dispose()
	c.Mod.Dispose()
	c.Ctx.Dispose()
}

// Compile drives the whole pipeline for the entry module, building the LLVM
// module in c.Mod, and returns an error if any step fails. It mirrors the teacher's GenLLVM: Pass 0
// forward-declares every top-level type/function, Pass 1 compiles bodies,
// and a final verification pass confirms every basic block terminates.
func (c *Compiler) Compile(prog *ast.Program) error {
	c.CurrentFile = prog.Path
	if err := c.loader.compileProgram(prog, c.CurrentScope); err != nil {
		return err
	}
	if c.Opt.Verbose {
		fmt.Println("LLVM IR:")
		c.Mod.Dump()
	}
	if ok, msg := llvm.VerifyModule(c.Mod, llvm.ReturnStatusAction); ok {
		return fmt.Errorf("module verification failed: %s", msg)
	}
	return nil
}

// pushScope replaces CurrentScope with a fresh child frame and returns a
// function that restores the parent, for defer-style scope discipline
// mirrored from the teacher's stack push/pop around blocks and functions.
func (c *Compiler) pushScope() func() {
	parent := c.CurrentScope
	c.CurrentScope = NewScope(parent)
	return func() { c.CurrentScope = parent }
}

// pushLoopScope is pushScope plus loop metadata for break/continue.
func (c *Compiler) pushLoopScope(cond, end llvm.BasicBlock) func() {
	parent := c.CurrentScope
	s := NewScope(parent)
	s.IsLoop = true
	s.LoopCond = cond
	s.LoopEnd = end
	c.CurrentScope = s
	return func() { c.CurrentScope = parent }
}

// terminated reports whether the builder's current insertion block already
// ends in a terminator, per the builder discipline in spec §5: callers must
// check this before emitting a new terminator-relevant instruction.
func (c *Compiler) terminated() bool {
	blk := c.B.GetInsertBlock()
	if blk.IsNil() {
		return true
	}
	return !blk.LastInstruction().IsNil() && !blk.LastInstruction().IsATerminatorInst().IsNil()
}
