// Package debug holds the trace-mode switch shared by the compiler and the VM.
package debug

import "fmt"

// DEBUG gates the disassembly / stack-trace logging emitted through logrus.
// It is off by default; the `cmd` package flips it on for `-v DEBUG`.
var DEBUG = false

func Assertf(b bool, format string, a ...any) {
	if DEBUG && !b {
		panic(fmt.Sprintf(format, a...))
	}
}

func AssertEq[T comparable](expected, got T) { Assertf(expected == got, "%v != %v", expected, got) }
