// Package skyb reads and writes Skybrush binary show files: compiled
// drone-show artifacts holding trajectories, light programs,
// return-to-home plans, yaw setpoints, event lists and comments as a
// sequence of typed, length-prefixed blocks, optionally protected by a
// whole-file CRC32.
//
// A show file starts with the magic bytes "skyb" and a version byte.
// Version 2 files add a feature flags byte and, when the CRC32 feature
// is set, a four-byte little-endian checksum computed over the whole
// file with the checksum field itself taken as zeros.
//
// # Quick start
//
// Create a show file in memory, append blocks and finalize it:
//
//	f, err := skyb.New(2)
//	if err != nil {
//	    return err
//	}
//	if err := f.AddComment("compiled by example"); err != nil {
//	    return err
//	}
//	if err := f.Finalize(); err != nil {
//	    return err
//	}
//	data, err := f.Contents()
//
// Read it back lazily:
//
//	f = skyb.FromBytes(data)
//	for block, err := range f.Blocks() {
//	    if err != nil {
//	        return err
//	    }
//	    body, err := block.Read()
//	    ...
//	}
//
// Blocks iterated from a seekable stream defer their body reads until
// [Block.Read] is called; on non-seekable streams bodies are
// materialized during iteration because the stream can only advance by
// reading.
//
// A File owns its backing stream exclusively and keeps a single logical
// cursor; it must be used from one goroutine at a time. An instance
// abandoned in the middle of an operation is left with an indeterminate
// cursor and must be discarded.
package skyb
