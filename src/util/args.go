package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the parsed command line configuration for the fin driver.
type Options struct {
	Src       string // Path to source file, the module's entry point.
	Root      string // Project root used to compute mangled, path-derived symbol names.
	Out       string // Path to output file (.o by default, .ll when only EmitLLVM is set).
	Verbose   bool   // Set true if the compiler should dump verbose IR/diagnostic text.
	EmitLLVM  bool   // Set true to emit human-readable LLVM IR text instead of an object file.
	EmitObject bool  // Set true to emit a native object file via the target machine.
	RunJIT    bool   // Set true to JIT and execute main() instead of emitting output.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "fin compiler 0.1"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options structure.
func ParseArgs() (Options, error) {
	var opt Options
	if len(os.Args) < 2 {
		return opt, nil
	}
	args := os.Args[1:]
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-emit-llvm":
			opt.EmitLLVM = true
		case "-c":
			opt.EmitObject = true
		case "-run":
			opt.RunJIT = true
		case "-o", "-root":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected argument, got new flag %s", args[i1+1])
			}
			switch args[i1] {
			case "-o":
				opt.Out = args[i1+1]
			case "-root":
				opt.Root = args[i1+1]
			}
			i1++
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i1])
			}
			opt.Src = args[i1]
		}
	}
	if opt.Root == "" && opt.Src != "" {
		opt.Root = "."
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits the application.")
	_, _ = fmt.Fprintln(w, "-emit-llvm\tEmit human-readable LLVM IR text instead of an object file.")
	_, _ = fmt.Fprintln(w, "-c\tEmit a native object file via the LLVM target machine.")
	_, _ = fmt.Fprintln(w, "-run\tJIT compile and execute main() instead of emitting output.")
	_, _ = fmt.Fprintln(w, "-o\tPath and name of the output file.")
	_, _ = fmt.Fprintln(w, "-root\tProject root directory used to compute mangled symbol names.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits the application.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print compiler diagnostics and IR dumps to stdout.")
	_ = w.Flush()
}
