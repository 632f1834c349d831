// Package main is the entry point for the fsbo server and CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/evcraddock/fsbo/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
