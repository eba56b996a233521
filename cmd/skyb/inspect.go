package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/opencontainers/go-digest"
	"github.com/urfave/cli/v3"

	"github.com/meigma/skyb"
)

type blockInfo struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Length int    `json:"length"`
}

type fileInfo struct {
	Path    string      `json:"path"`
	Version int         `json:"version"`
	CRC32   bool        `json:"crc32"`
	Digest  string      `json:"digest,omitempty"`
	Blocks  []blockInfo `json:"blocks"`
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "List the blocks of a show file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "emit machine-readable JSON"},
			&cli.BoolFlag{Name: "digest", Usage: "include the sha256 digest of the file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("error: expected exactly one show file", 2)
			}
			path := cmd.Args().First()

			info, err := inspectFile(path, cmd.Bool("digest"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Printf("File: %s\n", info.Path)
			fmt.Printf("Skybrush binary show file v%d", info.Version)
			if info.CRC32 {
				fmt.Print(" | crc32")
			}
			fmt.Println()
			if info.Digest != "" {
				fmt.Printf("Digest: %s\n", info.Digest)
			}
			for _, b := range info.Blocks {
				fmt.Printf("%4d  %-13s  %6d bytes\n", b.Index, b.Type, b.Length)
			}
			return nil
		},
	}
}

func inspectFile(path string, withDigest bool) (*fileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := skyb.FromBytes(data)
	blocks, err := f.ReadAllBlocks()
	if err != nil {
		return nil, err
	}
	version, err := f.Version()
	if err != nil {
		return nil, err
	}
	features, err := f.Features()
	if err != nil {
		return nil, err
	}

	info := &fileInfo{
		Path:    path,
		Version: version,
		CRC32:   features.Has(skyb.FeatureCRC32),
		Blocks:  make([]blockInfo, 0, len(blocks)),
	}
	if withDigest {
		info.Digest = digest.FromBytes(data).String()
	}
	for i, b := range blocks {
		info.Blocks = append(info.Blocks, blockInfo{
			Index:  i,
			Type:   b.Type().String(),
			Length: b.Len(),
		})
	}
	return info, nil
}
