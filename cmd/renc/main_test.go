package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets testscript scripts invoke this binary's own subcommands
// in-process (the renc entry above) instead of spawning a separate
// compiled binary, the rogpeppe/go-internal convention.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"renc": func() int {
			main()
			return 0
		},
	}))
}

func TestCLIScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
