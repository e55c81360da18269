//go:build gofuzz
// +build gofuzz

package fuzz

import "github.com/tdewolff/fontsplit"

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	ranges, err := fontsplit.ParseSelector(string(data))
	if err != nil {
		return 0
	}
	for _, r := range ranges {
		if r.Hi < r.Lo || fontsplit.MaxCodePoint < r.Hi {
			panic("bad range " + r.String())
		}
	}
	return 1
}
