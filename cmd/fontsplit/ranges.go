package main

import (
	"fmt"

	"github.com/tdewolff/fontsplit"
)

type Ranges struct {
	Selector bool   `short:"s" desc:"Print the code point selectors passed to the subsetting engine."`
	Input    string `index:"0" desc:"Reference CSS file."`
}

func (cmd *Ranges) Run() error {
	ranges, err := fontsplit.ReadRanges(cmd.Input)
	if err != nil {
		return err
	}
	for i, r := range ranges {
		if cmd.Selector {
			r = fontsplit.Selector(r)
		}
		fmt.Printf("%3d  %s\n", i, r)
	}
	return nil
}
