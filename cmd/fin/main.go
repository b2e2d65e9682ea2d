// Command fin drives the compiler core over a parsed Fin AST: read options,
// obtain the entry module's AST, run the compiler pipeline, and emit LLVM IR,
// a native object file, or JIT-execute main(), per the teacher's main.go
// (util.ParseArgs / util.ReadSource / util.ListenWrite shape).
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/compiler"
	"github.com/M1778/fin/src/util"
)

// Frontend parses Fin source text into the AST this compiler core consumes.
// The lexer and parser are an external collaborator out of this repository's
// scope (spec.md §1 "Out of scope"); a real front end registers itself here
// before main() runs. Left nil, the driver reports a clear error instead of
// panicking on a nil call.
var Frontend func(path, src string) (*ast.Program, error)

// run mirrors the teacher's run(opt) in shape: read source, parse, compile,
// and dispatch to whichever output mode was requested.
func run(opt util.Options) error {
	if opt.Src == "" {
		return fmt.Errorf("no input file given (see -help)")
	}
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}
	if Frontend == nil {
		return fmt.Errorf("no front end registered: cmd/fin was built without a Fin lexer/parser wired into the Frontend hook")
	}
	prog, err := Frontend(opt.Src, src)
	if err != nil {
		return fmt.Errorf("parse error: %s", err)
	}

	c := compiler.New(opt)
	defer c.Dispose()
	c.ParseFile = func(path string) (*ast.Program, error) {
		text, rerr := util.ReadSource(util.Options{Src: path})
		if rerr != nil {
			return nil, rerr
		}
		return Frontend(path, text)
	}

	if err := c.Compile(prog); err != nil {
		return fmt.Errorf("error reported by LLVM: %s", err)
	}

	switch {
	case opt.RunJIT:
		code, jerr := c.RunJIT()
		if jerr != nil {
			return fmt.Errorf("JIT execution failed: %s", jerr)
		}
		os.Exit(code)
		return nil
	case opt.EmitObject:
		out := opt.Out
		if out == "" {
			out = "./a.o"
		}
		return c.EmitObject(out)
	case opt.EmitLLVM:
		ir := c.EmitIR()
		if opt.Out == "" {
			fmt.Println(ir)
			return nil
		}
		return os.WriteFile(opt.Out, []byte(ir), 0644)
	default:
		out := opt.Out
		if out == "" {
			out = "./a.o"
		}
		return c.EmitObject(out)
	}
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	wg := sync.WaitGroup{}
	if len(opt.Out) > 0 && opt.Verbose {
		if f, ferr := os.OpenFile(opt.Out+".log", os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644); ferr == nil {
			defer func(f *os.File) {
				if cerr := f.Close(); cerr != nil {
					fmt.Println(cerr)
				}
			}(f)
			util.ListenWrite(opt, f, &wg)
		} else {
			util.ListenWrite(opt, nil, &wg)
		}
	} else {
		util.ListenWrite(opt, nil, &wg)
	}
	defer util.Close()

	if err := run(opt); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	wg.Wait()
	time.Sleep(10 * time.Millisecond)
}
