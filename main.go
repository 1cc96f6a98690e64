package main

import (
	"os"

	"github.com/melizalab/nbank-registry/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
