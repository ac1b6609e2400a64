package main

import (
	"os"

	"github.com/gridsim/pvdispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
