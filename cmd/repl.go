package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/visviva/thorium/vm"
)

// repl reads one line at a time from the interactive prompt and interprets
// it, sharing one VM (and so one globals environment) across the session.
// It stops on an empty line, Ctrl-D, or Ctrl-C.
func repl() int {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rl.Close()

	vm_ := vm.NewVM()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF || line == "" {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 0
		}
		// Diagnostics are reported but never end the session early.
		report(vm_.Interpret(line))
	}
}
