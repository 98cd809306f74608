// Package main provides the nopaper terminal client entry point.
package main

import (
	"fmt"
	"os"

	"github.com/lijoraj-p-r/NoPaper/internal/cli"
)

func main() {
	if err := cli.Root().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
