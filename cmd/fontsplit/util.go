package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/tdewolff/prompt"
	"golang.org/x/term"
)

func quiet() {
	Info = log.New(io.Discard, "", 0)
	Warning = log.New(io.Discard, "", 0)
}

// confirmOverwrite asks whether to overwrite an existing file, but only when run interactively.
func confirmOverwrite(filename string, force bool) bool {
	if _, err := os.Stat(filename); err != nil {
		return true
	}
	return confirm(fmt.Sprintf("%s already exists, overwrite?", filename), force)
}

func confirm(question string, force bool) bool {
	if force || !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	return prompt.YesNo(question, false)
}

func fileSize(filename string) uint64 {
	info, err := os.Stat(filename)
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}

func formatBytes(size uint64) string {
	if size < 10 {
		return fmt.Sprintf("%d B", size)
	}

	units := []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}
	scale := int(math.Floor((math.Log10(float64(size)) + math.Log10(2.0)) / 3.0))
	value := float64(size) / math.Pow10(scale*3.0)
	format := "%.0f %s"
	if value < 10.0 {
		format = "%.1f %s"
	}
	return fmt.Sprintf(format, value, units[scale])
}
