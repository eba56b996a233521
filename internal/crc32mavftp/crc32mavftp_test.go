package crc32mavftp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"empty", nil, 0},
		{"abc", []byte("abc"), 0xca6598d0},
		{"digits", []byte("123456789"), 0x2dfd2d88},
		{"show header", []byte{0x73, 0x6b, 0x79, 0x62, 0x02, 0x01}, 0x7b019b7f},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.data))
		})
	}
}

func TestUpdateIsIncremental(t *testing.T) {
	data := []byte("skyb\x02\x01hello world")
	whole := Checksum(data)

	crc := uint32(0)
	for _, b := range data {
		crc = Update(crc, []byte{b})
	}
	assert.Equal(t, whole, crc)
}
