// Package crc32mavftp implements the CRC32 variant used by the MAVLink
// FTP protocol: the reflected IEEE polynomial with a zero initial value
// and no final complement.
package crc32mavftp

import "hash/crc32"

// Update returns the running checksum extended with the bytes of p.
// A fresh computation starts from a zero running value.
//
// The standard library routine complements the running value on entry
// and on exit; pre-inverting crc cancels both, leaving the bare table
// update this variant calls for.
func Update(crc uint32, p []byte) uint32 {
	return ^crc32.Update(^crc, crc32.IEEETable, p)
}

// Checksum returns the checksum of data, starting from a zero seed.
func Checksum(data []byte) uint32 {
	return Update(0, data)
}
