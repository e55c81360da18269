package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tdewolff/fontsplit"
)

type Split struct {
	Quiet     bool   `short:"q" desc:"Suppress output except for errors."`
	Force     bool   `short:"f" desc:"Force overwriting existing files."`
	Engine    string `short:"e" desc:"Subsetting engine, either fonttools or native." default:"fonttools"`
	Python    string `desc:"Python interpreter with fontTools and brotli installed." default:"python3"`
	Timeout   int    `short:"t" desc:"Timeout in seconds for subsetting a single range, zero for none."`
	Index     int    `short:"i" desc:"Index into font collection (used with TTC or OTC)."`
	Family    string `desc:"Font family name in the CSS, defaults to the font file name."`
	Weight    string `short:"w" desc:"Font weight in the CSS, eg. 700 or '100 900'. Detected from the font by default."`
	Output    string `short:"o" desc:"Output directory." default:"dist"`
	Input     string `index:"0" desc:"Input font file."`
	Reference string `index:"1" desc:"Reference CSS file with @font-face unicode-range declarations."`
}

func (cmd *Split) Run() error {
	if cmd.Quiet {
		quiet()
	}

	if cmd.Input == "" {
		return fmt.Errorf("input font file not set")
	} else if cmd.Reference == "" {
		return fmt.Errorf("reference CSS file not set")
	}

	var engine fontsplit.Subsetter
	switch cmd.Engine {
	case "", "fonttools":
		engine = fontsplit.FontTools{Python: cmd.Python}
	case "native":
		engine = fontsplit.Native{Index: cmd.Index}
	default:
		return fmt.Errorf("unsupported engine: %v", cmd.Engine)
	}

	job := fontsplit.Job{
		FontPath:      cmd.Input,
		ReferencePath: cmd.Reference,
		OutputDir:     cmd.Output,
		Family:        cmd.Family,
	}
	if cmd.Weight != "" {
		weight, err := fontsplit.ParseFontWeight(cmd.Weight)
		if err != nil {
			return err
		}
		job.Weight = &weight
	}

	stylesheet := filepath.Join(cmd.Output, fontsplit.StylesheetFilename(cmd.Input))
	if !confirmOverwrite(stylesheet, cmd.Force) {
		return nil
	}

	pipeline := &fontsplit.Pipeline{
		Engine:  engine,
		Reader:  fontsplit.SFNTReader{Index: cmd.Index},
		Timeout: time.Duration(cmd.Timeout) * time.Second,
		Info:    Info,
		Warning: Warning,
	}
	report, err := pipeline.Run(context.Background(), job)
	if err != nil {
		return err
	}

	var wLen uint64
	for _, res := range report.Results {
		if res.OK() {
			wLen += fileSize(res.Path)
		}
	}
	rLen := fileSize(cmd.Input)
	ratio := 1.0
	if 0 < rLen {
		ratio = float64(wLen) / float64(rLen)
	}
	Info.Printf("%v:  %v => %v (%.1f%%)\n", filepath.Base(cmd.Input), formatBytes(rLen), formatBytes(wLen), ratio*100.0)
	return nil
}
