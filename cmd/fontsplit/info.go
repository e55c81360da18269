package main

import (
	"fmt"

	"github.com/tdewolff/fontsplit"
)

type Inspect struct {
	Index int    `short:"i" desc:"Font index for font collections"`
	Input string `index:"0" desc:"Input file"`
}

func (cmd *Inspect) Run() error {
	reader := fontsplit.SFNTReader{Index: cmd.Index}
	axis, ok, err := reader.WeightAxis(cmd.Input)
	if err != nil {
		return fmt.Errorf("%v: %v", cmd.Input, err)
	}

	weight, _ := fontsplit.InspectWeight(reader, cmd.Input)
	fmt.Printf("File: %s\n\n", cmd.Input)
	fmt.Printf("Family: %s\n", fontsplit.FamilyName(cmd.Input))
	if ok {
		fmt.Printf("Axis: wght  min=%g  default=%g  max=%g\n", axis.Min, axis.Default, axis.Max)
	} else {
		fmt.Printf("Axis: none (static font)\n")
	}
	fmt.Printf("font-weight: %v\n", weight)
	return nil
}
