//go:build gofuzz
// +build gofuzz

package fuzz

import (
	"os"

	"github.com/tdewolff/fontsplit"
)

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	f, err := os.CreateTemp("", "fuzz-*.ttf")
	if err != nil {
		return 0
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return 0
	}
	f.Close()

	weight, _ := fontsplit.InspectWeight(fontsplit.SFNTReader{}, f.Name())
	if weight.Max < weight.Min {
		panic("bad weight " + weight.String())
	}
	return 1
}
