package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/spares/internal/cli"
)

func main() {
	// Parse command-line arguments
	var args cli.Args
	parser := arg.MustParse(&args)

	// Default behavior: interactive search
	explicit := args.HasCommand()
	if !explicit {
		args.Search = &cli.SearchCmd{}
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cliHandler.Execute(&args)
	cliHandler.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// If it's an argument validation error, show usage
		if explicit && args.Validate() != nil {
			fmt.Fprintln(os.Stderr)
			parser.WriteUsage(os.Stderr)
		}
		os.Exit(1)
	}
}
