package fontsplit

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// DefaultOutputDir is the output directory used when none is given.
const DefaultOutputDir = "dist"

// Job is a single invocation of the pipeline.
type Job struct {
	FontPath      string // source font file
	ReferencePath string // reference stylesheet with unicode-range declarations
	OutputDir     string // defaults to DefaultOutputDir

	Family string      // font-family name, defaults to the font's base name
	Weight *FontWeight // overrides weight detection
}

// Report is the outcome of a pipeline run.
type Report struct {
	Ranges     []string
	Weight     FontWeight
	Results    []SubsetResult
	Stylesheet string // path of the written stylesheet
}

// Succeeded returns the number of subsets created.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the results of the ranges that could not be subset.
func (r *Report) Failed() []SubsetResult {
	failed := []SubsetResult{}
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Pipeline splits a font into subsets following the unicode ranges of a reference stylesheet and writes a stylesheet for the subsets.
type Pipeline struct {
	Engine  Subsetter      // defaults to FontTools
	Reader  MetadataReader // defaults to SFNTReader
	Options SubsetOptions  // defaults to DefaultSubsetOptions when unset, an empty Flavor defaults to woff2
	Timeout time.Duration  // for each range, zero means no timeout

	Info    *log.Logger
	Warning *log.Logger
}

func (p *Pipeline) init() {
	if p.Engine == nil {
		p.Engine = FontTools{}
	}
	if p.Reader == nil {
		p.Reader = SFNTReader{}
	}
	if p.Options.Flavor == "" && p.Options.LayoutFeatures == nil && !p.Options.Hinting && !p.Options.Desubroutinize {
		p.Options = DefaultSubsetOptions
	} else if p.Options.Flavor == "" {
		p.Options.Flavor = DefaultSubsetOptions.Flavor
	}
	if p.Info == nil {
		p.Info = log.New(io.Discard, "", 0)
	}
	if p.Warning == nil {
		p.Warning = log.New(io.Discard, "", 0)
	}
}

// CheckDependencies verifies that the subsetting engine can be used.
func (p *Pipeline) CheckDependencies(ctx context.Context) error {
	p.init()
	if checker, ok := p.Engine.(Checker); ok {
		if err := checker.Check(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingDependency, err)
		}
	}
	return nil
}

// Run executes the job. Errors are returned for failed preconditions, in which case nothing is written, and when ctx is done, in which case the stylesheet covers the subsets created until then. Ranges that fail to subset are reported in the returned Report and as warnings.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Report, error) {
	p.init()
	if job.OutputDir == "" {
		job.OutputDir = DefaultOutputDir
	}
	if job.Family == "" {
		job.Family = FamilyName(job.FontPath)
	}

	if err := p.CheckDependencies(ctx); err != nil {
		return nil, err
	}

	// validate inputs
	if info, err := os.Stat(job.FontPath); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %v", ErrSourceFontNotFound, job.FontPath)
	}

	ranges, err := ReadRanges(job.ReferencePath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Ranges:     ranges,
		Stylesheet: filepath.Join(job.OutputDir, StylesheetFilename(job.FontPath)),
	}
	if job.Weight != nil {
		report.Weight = *job.Weight
	} else {
		report.Weight, err = InspectWeight(p.Reader, job.FontPath)
		if err != nil {
			p.Warning.Println(err)
		}
	}
	p.Info.Printf("Detected font-weight: %v\n", report.Weight)

	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return nil, err
	}

	p.Info.Printf("Target font: %v\n", job.FontPath)
	p.Info.Printf("Reference CSS: %v\n", job.ReferencePath)
	p.Info.Printf("Found %d ranges, starting subsetting...\n", len(ranges))

	driver := &Driver{
		Engine:  p.Engine,
		Options: p.Options,
		Timeout: p.Timeout,
		Warning: p.Warning,
	}
	report.Results = driver.Run(ctx, job.FontPath, job.OutputDir, ranges)

	if _, err := WriteStylesheetFile(report.Stylesheet, job.Family, report.Weight, report.Results); err != nil {
		return report, err
	}

	p.Info.Printf("Created %d of %d subsets\n", report.Succeeded(), len(ranges))
	p.Info.Printf("CSS file: %v\n", report.Stylesheet)
	return report, ctx.Err()
}
