//go:build gofuzz
// +build gofuzz

package fuzz

import (
	"bytes"

	"github.com/tdewolff/fontsplit"
)

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	_, _ = fontsplit.ExtractRanges(bytes.NewReader(data))
	return 1
}
