package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/meigma/skyb"
)

func commentCmd() *cli.Command {
	return &cli.Command{
		Name:      "comment",
		Usage:     "Append a comment block to a show file",
		ArgsUsage: "FILE TEXT",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return cli.Exit("error: expected a show file and a comment", 2)
			}
			path, text := cmd.Args().Get(0), cmd.Args().Get(1)

			data, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			f := skyb.FromBytes(data)
			if err := f.AddComment(text); err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}
			if err := f.Finalize(); err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}

			contents, err := f.Contents()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}
			if err := os.WriteFile(path, contents, 0o644); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func extractCmd() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Write the body of one block to a file or stdout",
		ArgsUsage: "FILE INDEX",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output path (defaults to stdout)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return cli.Exit("error: expected a show file and a block index", 2)
			}
			path := cmd.Args().Get(0)
			index, err := strconv.Atoi(cmd.Args().Get(1))
			if err != nil || index < 0 {
				return cli.Exit("error: block index must be a non-negative integer", 2)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			f := skyb.FromBytes(data)
			blocks, err := f.ReadAllBlocks()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}
			if index >= len(blocks) {
				return cli.Exit(fmt.Sprintf("error: %s has only %d blocks", path, len(blocks)), 1)
			}

			body, err := blocks[index].Read()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}

			if out := cmd.String("output"); out != "" {
				if err := os.WriteFile(out, body, 0o644); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				return nil
			}
			_, err = os.Stdout.Write(body)
			return err
		},
	}
}
