package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/skyb"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate the checksum and block structure of show files",
		ArgsUsage: "FILE...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("error: expected at least one show file", 2)
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			var g errgroup.Group
			results := make([]error, len(paths))
			for i, path := range paths {
				g.Go(func() error {
					results[i] = validateFile(path)
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			for i, path := range paths {
				if results[i] != nil {
					failed++
					logger.Error("validation failed", "file", path, "error", results[i])
				} else {
					logger.Info("validation passed", "file", path)
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("error: %d of %d files failed validation", failed, len(paths)), 1)
			}
			return nil
		},
	}
}

// validateFile checks the header, the checksum (when present) and the
// block framing of one show file.
func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	f := skyb.FromBytes(data)
	_, err = f.ReadAllBlocks(skyb.WithValidation(true))
	return err
}
