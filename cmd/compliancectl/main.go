// Command compliancectl is the operator CLI for the compliance engine.
package main

import (
	"fmt"
	"os"

	"github.com/complyhq/compliance-engine/internal/interfaces/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "compliancectl: %v\n", err)
		os.Exit(1)
	}
}
