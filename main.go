package main

import (
	"os"

	"github.com/visviva/thorium/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
