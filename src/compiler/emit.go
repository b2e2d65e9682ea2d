package compiler

import (
	"errors"
	"fmt"
	"os"

	"tinygo.org/x/go-llvm"
)

// EmitIR returns the module's textual LLVM IR representation, for -emit-llvm.
func (c *Compiler) EmitIR() string {
	return c.Mod.String()
}

// EmitObject lowers the module to a native object file and writes it to path,
// mirroring the teacher's genTargetTriple/CreateTargetMachine/EmitToMemoryBuffer
// sequence in ir/llvm/transform.go, generalized from a fixed VSL arch switch to
// whatever the host's default target triple is (Fin has no cross-compile flags
// in spec scope).
func (c *Compiler) EmitObject(path string) error {
	llvm.InitializeNativeTarget()
	llvm.InitializeNativeAsmPrinter()

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return fmt.Errorf("could not resolve target for triple %s: %w", triple, err)
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault,
		llvm.RelocDefault,
		llvm.CodeModelDefault)
	defer tm.Dispose()

	td := tm.CreateTargetData()
	defer td.Dispose()

	c.Mod.SetDataLayout(td.String())
	c.Mod.SetTarget(tm.Triple())

	buf, err := tm.EmitToMemoryBuffer(c.Mod, llvm.ObjectFile)
	if err != nil {
		return err
	}
	if buf.IsNil() {
		return errors.New("could not emit compiled code to memory")
	}

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fd.Close(); cerr != nil {
			fmt.Println(cerr)
		}
	}()
	_, err = fd.Write(buf.Bytes())
	return err
}

// RunJIT executes the compiled module's main function in an LLVM MCJIT
// execution engine and returns main's exit code. Used by the `-run` flag.
func (c *Compiler) RunJIT() (int, error) {
	if err := llvm.LinkInMCJIT(); err != nil {
		return 0, err
	}
	llvm.InitializeNativeTarget()
	llvm.InitializeNativeAsmPrinter()

	opts := llvm.NewMCJITCompilerOptions()
	engine, err := llvm.NewMCJITCompiler(c.Mod, opts)
	if err != nil {
		return 0, fmt.Errorf("could not create JIT execution engine: %w", err)
	}
	defer engine.Dispose()

	mainFn := c.Mod.NamedFunction("main")
	if mainFn.IsNil() {
		return 0, errors.New("no main function defined")
	}
	ret := engine.RunFunction(mainFn, nil)
	return int(ret.Int(false)), nil
}
