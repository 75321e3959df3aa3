package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	lerrors "github.com/visviva/thorium/errors"
	"github.com/visviva/thorium/vm"
)

// runFile reads path as UTF-8 source and interprets it, returning the
// sysexits-style process exit code.
func runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatal(err)
	}
	return report(vm.NewVM().Interpret(string(src)))
}

// report prints a failing interpretation's diagnostic to stderr and maps it
// to the 0/65/70 exit-code convention.
func report(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, err)
	if _, ok := err.(*lerrors.RuntimeError); ok {
		return 70
	}
	return 65
}
