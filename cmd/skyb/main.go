// Command skyb inspects and manipulates Skybrush binary show files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "skyb",
		Usage: "Inspect and manipulate Skybrush binary show files",
		Commands: []*cli.Command{
			inspectCmd(),
			validateCmd(),
			commentCmd(),
			extractCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
