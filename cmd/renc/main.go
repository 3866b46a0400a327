// cmd/renc/main.go
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/r3n/ren-c-sub001/internal/dispatch"
	"github.com/r3n/ren-c-sub001/internal/rlog"
	"github.com/r3n/ren-c-sub001/internal/runtime"
	"github.com/r3n/ren-c-sub001/internal/value"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		startREPL()
		return
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("renc " + version)
	case "run":
		if len(args) < 2 {
			rlog.Fatalf("cli", "run requires a file argument")
		}
		runFile(args[1])
	default:
		runFile(args[0])
	}
}

// describe renders a result value the way a REPL echoes its last
// expression: molded (re-readable) text.
func describe(c value.Cell) string {
	return dispatch.Mold(&c, false)
}

func showUsage() {
	fmt.Println(`renc - Ren-C-style evaluator core

Usage:
  renc                run the interactive REPL
  renc run <file>      evaluate a file and print its last value
  renc <file>          shorthand for "renc run <file>"
  renc --version       print the version
  renc --help          show this message`)
}

func runFile(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		rlog.Fatalf("cli", "could not read %s: %v", path, err)
	}

	rt, err := runtime.Startup(runtime.DefaultOptions())
	if err != nil {
		rlog.Fatalf("cli", "startup failed: %v", err)
	}
	defer rt.Shutdown()

	out, err := rt.Evaluate(string(src))
	if err != nil {
		rlog.Fatalf("cli", "%v", err)
	}
	fmt.Println(describe(out))
}

func startREPL() {
	rt, err := runtime.Startup(runtime.DefaultOptions())
	if err != nil {
		rlog.Fatalf("cli", "startup failed: %v", err)
	}
	defer rt.Shutdown()

	interactive := isatty.IsTerminal(os.Stdin.Fd())
	prompt := ""
	if interactive {
		prompt = ">> "
		fmt.Println("renc REPL | type 'exit' to quit")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if prompt != "" {
			fmt.Print(prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		out, err := rt.Rescue(func() (value.Cell, error) {
			return rt.Evaluate(line)
		})
		if err != nil {
			fmt.Println("** error:", err)
			continue
		}
		fmt.Println(describe(out))
	}
}
