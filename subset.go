package fontsplit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SubsetExt is the file extension of the subset fonts.
const SubsetExt = ".woff2"

// SubsetOptions are the options passed to a subsetting engine for every range.
type SubsetOptions struct {
	Flavor         string   // output format, only woff2 is supported
	LayoutFeatures []string // OpenType layout features to keep, * for all
	Hinting        bool     // keep hinting instructions
	Desubroutinize bool     // flatten CFF subroutines
}

// DefaultSubsetOptions produce WOFF2 subsets keeping all layout features, without hinting and with flattened outlines.
var DefaultSubsetOptions = SubsetOptions{
	Flavor:         "woff2",
	LayoutFeatures: []string{"*"},
	Hinting:        false,
	Desubroutinize: true,
}

// Subsetter is a font subsetting engine. Subset writes a font to outputPath containing only the code points of selector, which is a comma separated list of unicode ranges. A failure of the engine for the given input must wrap ErrSubsetEngine, other errors are regarded as a failure to invoke the engine.
type Subsetter interface {
	Subset(ctx context.Context, fontPath, outputPath, selector string, options SubsetOptions) error
}

// Checker is implemented by engines that depend on external tools.
type Checker interface {
	Check(ctx context.Context) error
}

// SubsetResult is the outcome of subsetting the font for one unicode range.
type SubsetResult struct {
	Index int    // position of the range in the reference stylesheet
	Range string // unicode-range value
	Path  string // output file
	Err   error
}

// OK returns true if the subset was created.
func (res SubsetResult) OK() bool {
	return res.Err == nil
}

// SafeName returns the base name of a font file without extension and with spaces replaced by underscores.
func SafeName(fontPath string) string {
	return strings.ReplaceAll(FamilyName(fontPath), " ", "_")
}

// FamilyName returns the base name of a font file without extension.
func FamilyName(fontPath string) string {
	base := filepath.Base(fontPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SubsetFilename returns the file name of the subset for the i-th range.
func SubsetFilename(name string, i int) string {
	return fmt.Sprintf("%s_%d%s", name, i, SubsetExt)
}

// Driver subsets a font for each range in turn. A failing range never stops the remaining ranges.
type Driver struct {
	Engine  Subsetter
	Options SubsetOptions
	Timeout time.Duration // for each range, zero means no timeout
	Warning *log.Logger
}

// Run subsets the font at fontPath for each of the ranges into outputDir, returning one result per range in the same order. Subsets left over from earlier runs are removed, so that the number of subset files in outputDir equals the number of successful results.
func (d *Driver) Run(ctx context.Context, fontPath, outputDir string, ranges []string) []SubsetResult {
	if d.Warning == nil {
		d.Warning = log.New(io.Discard, "", 0)
	}

	name := SafeName(fontPath)
	d.removeStale(outputDir, name)

	results := make([]SubsetResult, 0, len(ranges))
	for i, r := range ranges {
		res := SubsetResult{
			Index: i,
			Range: r,
			Path:  filepath.Join(outputDir, SubsetFilename(name, i)),
		}
		if res.Err = d.subset(ctx, fontPath, res.Path, r); res.Err != nil {
			if errors.Is(res.Err, ErrSubsetEngine) {
				d.Warning.Printf("failed to subset range %d (%s): %v\n", i, r, res.Err)
			} else {
				d.Warning.Printf("error processing range %d (%s): %v\n", i, r, res.Err)
			}
			if err := os.Remove(res.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				d.Warning.Println(err)
			}
		}
		results = append(results, res)
	}
	return results
}

func (d *Driver) subset(ctx context.Context, fontPath, outputPath, r string) error {
	if d.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	if err := d.Engine.Subset(ctx, fontPath, outputPath, Selector(r), d.Options); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out after %v", ErrSubsetEngine, d.Timeout)
		} else if errors.Is(err, ErrSubsetEngine) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrSubsetException, err)
	}
	if info, err := os.Stat(outputPath); err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: no output file created", ErrSubsetEngine)
	}
	return nil
}

func (d *Driver) removeStale(outputDir, name string) {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `_[0-9]+` + regexp.QuoteMeta(SubsetExt) + `$`)
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && re.MatchString(entry.Name()) {
			if err := os.Remove(filepath.Join(outputDir, entry.Name())); err != nil {
				d.Warning.Println(err)
			}
		}
	}
}
