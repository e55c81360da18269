package main

import (
	"log"
	"os"

	"github.com/tdewolff/argp"
)

var (
	Info    *log.Logger
	Warning *log.Logger
)

func main() {
	Info = log.New(os.Stdout, "", 0)
	Warning = log.New(os.Stderr, "WARNING: ", 0)

	cmd := argp.New("Split fonts into unicode-range subsets for the web")
	cmd.AddCmd(&Split{}, "split", "Split font into WOFF2 subsets and write their CSS")
	cmd.AddCmd(&Ranges{}, "ranges", "List unicode ranges of a reference CSS file")
	cmd.AddCmd(&Inspect{}, "info", "Get font weight info")
	cmd.AddCmd(&Release{}, "release", "Publish split fonts to a directory or S3 bucket")
	cmd.Parse()
}
