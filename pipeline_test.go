package fontsplit

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tdewolff/test"
)

const twoBlocksCSS = `/* latin */
@font-face {
  font-family: 'Example';
  src: url(latin.woff2) format('woff2');
  unicode-range: U+0000-00FF;
}
/* latin-ext */
@font-face {
  font-family: 'Example';
  src: url(latin-ext.woff2) format('woff2');
  unicode-range: U+0100-017F;
}
`

type checkingEngine struct {
	fakeEngine
	err error
}

func (e *checkingEngine) Check(ctx context.Context) error {
	return e.err
}

type fakeReader struct {
	axis *Axis
	err  error
}

func (r fakeReader) WeightAxis(string) (Axis, bool, error) {
	if r.err != nil {
		return Axis{}, false, r.err
	} else if r.axis == nil {
		return Axis{}, false, nil
	}
	return *r.axis, true, nil
}

type pipelineTest struct {
	dir       string
	job       Job
	info      bytes.Buffer
	warnings  bytes.Buffer
	engine    *fakeEngine
	reader    MetadataReader
	outputDir string
}

func newPipelineTest(t *testing.T, fontName string, font []byte, css string) *pipelineTest {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, fontName)
	test.Error(t, os.WriteFile(fontPath, font, 0644))
	referencePath := filepath.Join(dir, "reference.css")
	test.Error(t, os.WriteFile(referencePath, []byte(css), 0644))

	pt := &pipelineTest{
		dir: dir,
		job: Job{
			FontPath:      fontPath,
			ReferencePath: referencePath,
			OutputDir:     filepath.Join(dir, "dist"),
		},
		engine: &fakeEngine{},
		reader: SFNTReader{},
	}
	pt.outputDir = pt.job.OutputDir
	return pt
}

func (pt *pipelineTest) run() (*Report, error) {
	p := &Pipeline{
		Engine:  pt.engine,
		Reader:  pt.reader,
		Info:    log.New(&pt.info, "", 0),
		Warning: log.New(&pt.warnings, "WARNING: ", 0),
	}
	return p.Run(context.Background(), pt.job)
}

func (pt *pipelineTest) files(t *testing.T) []string {
	entries, err := os.ReadDir(pt.outputDir)
	test.Error(t, err)
	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func (pt *pipelineTest) stylesheet(t *testing.T, name string) string {
	b, err := os.ReadFile(filepath.Join(pt.outputDir, name))
	test.Error(t, err)
	return string(b)
}

func staticFont() []byte {
	return sfntFile(0, map[string][]byte{"head": make([]byte, 54)})
}

func variableFont() []byte {
	return sfntFile(0, map[string][]byte{
		"fvar": fvarTable(Axis{"wght", 100.0, 400.0, 900.0}),
		"head": make([]byte, 54),
	})
}

func TestPipelineStaticFont(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	report, err := pt.run()
	test.Error(t, err)

	test.T(t, report.Succeeded(), 2)
	test.String(t, report.Weight.String(), "400")
	test.String(t, report.Stylesheet, filepath.Join(pt.outputDir, "Example-Regular.css"))

	expected := []string{"Example-Regular.css", "Example-Regular_0.woff2", "Example-Regular_1.woff2"}
	if diff := cmp.Diff(expected, pt.files(t)); diff != "" {
		t.Errorf("output files mismatch (-want +got):\n%s", diff)
	}

	css := pt.stylesheet(t, "Example-Regular.css")
	test.T(t, strings.Count(css, "@font-face"), 2)
	test.T(t, strings.Count(css, "font-weight: 400;"), 2)
	test.T(t, strings.Count(css, "font-family: 'Example-Regular';"), 2)
	test.That(t, strings.Index(css, "U+0000-00FF") < strings.Index(css, "U+0100-017F"), "rules out of order")
	test.That(t, strings.Contains(css, "src: url('./Example-Regular_0.woff2') format('woff2');\n  unicode-range: U+0000-00FF;"), css)
	test.That(t, strings.Contains(css, "src: url('./Example-Regular_1.woff2') format('woff2');\n  unicode-range: U+0100-017F;"), css)

	test.That(t, strings.Contains(pt.info.String(), "Created 2 of 2 subsets"), pt.info.String())
	test.T(t, pt.warnings.Len(), 0)
}

func TestPipelineVariableFont(t *testing.T) {
	pt := newPipelineTest(t, "Example-Variable.ttf", variableFont(), twoBlocksCSS)
	report, err := pt.run()
	test.Error(t, err)

	test.T(t, report.Weight, FontWeight{100, 900, true})
	css := pt.stylesheet(t, "Example-Variable.css")
	test.T(t, strings.Count(css, "@font-face"), 2)
	test.T(t, strings.Count(css, "font-weight: 100 900;"), 2)
}

func TestPipelineNoRanges(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), "@font-face { font-family: 'Example'; src: url(a.woff2); }")
	_, err := pt.run()
	test.That(t, errors.Is(err, ErrNoRangesFound), "expected ErrNoRangesFound, got", err)

	_, err = os.Stat(pt.outputDir)
	test.That(t, errors.Is(err, os.ErrNotExist), "output directory must not be created")
	test.T(t, len(pt.engine.calls), 0)
}

func TestPipelinePartialFailure(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	pt.engine.errs = map[string]error{
		"U+0100-017F": &EngineError{ExitCode: 1, Stderr: "fontTools.subset: error"},
	}
	report, err := pt.run()
	test.Error(t, err)

	test.T(t, report.Succeeded(), 1)
	test.T(t, len(report.Failed()), 1)
	test.String(t, report.Failed()[0].Range, "U+0100-017F")

	expected := []string{"Example-Regular.css", "Example-Regular_0.woff2"}
	if diff := cmp.Diff(expected, pt.files(t)); diff != "" {
		t.Errorf("output files mismatch (-want +got):\n%s", diff)
	}
	css := pt.stylesheet(t, "Example-Regular.css")
	test.T(t, strings.Count(css, "@font-face"), 1)
	test.That(t, !strings.Contains(css, "U+0100-017F"), css)

	test.That(t, strings.Contains(pt.info.String(), "Created 1 of 2 subsets"), pt.info.String())
	test.That(t, strings.Contains(pt.warnings.String(), "fontTools.subset: error"), pt.warnings.String())
}

func TestPipelineAllFail(t *testing.T) {
	pt := newPipelineTest(t, "Example Font.ttf", staticFont(), twoBlocksCSS)
	pt.engine.errs = map[string]error{
		"U+0000-00FF": &EngineError{ExitCode: 1},
		"U+0100-017F": &EngineError{ExitCode: 1},
	}
	report, err := pt.run()
	test.Error(t, err)

	test.T(t, report.Succeeded(), 0)
	if diff := cmp.Diff([]string{"Example_Font.css"}, pt.files(t)); diff != "" {
		t.Errorf("output files mismatch (-want +got):\n%s", diff)
	}
	test.String(t, pt.stylesheet(t, "Example_Font.css"), "")
	test.That(t, strings.Contains(pt.info.String(), "Created 0 of 2 subsets"), pt.info.String())
}

func TestPipelinePreconditions(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	pt.job.FontPath = filepath.Join(pt.dir, "Missing.ttf")
	_, err := pt.run()
	test.That(t, errors.Is(err, ErrSourceFontNotFound), "expected ErrSourceFontNotFound, got", err)
	_, err = os.Stat(pt.outputDir)
	test.That(t, errors.Is(err, os.ErrNotExist), "output directory must not be created")

	pt = newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	pt.job.ReferencePath = filepath.Join(pt.dir, "missing.css")
	_, err = pt.run()
	test.That(t, errors.Is(err, ErrReferenceNotFound), "expected ErrReferenceNotFound, got", err)
	_, err = os.Stat(pt.outputDir)
	test.That(t, errors.Is(err, os.ErrNotExist), "output directory must not be created")
}

func TestPipelineMissingDependency(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	engine := &checkingEngine{err: errors.New("python3 not found")}
	p := &Pipeline{Engine: engine, Reader: pt.reader}
	_, err := p.Run(context.Background(), pt.job)
	test.That(t, errors.Is(err, ErrMissingDependency), "expected ErrMissingDependency, got", err)
	test.T(t, len(engine.calls), 0)
	_, err = os.Stat(pt.outputDir)
	test.That(t, errors.Is(err, os.ErrNotExist), "output directory must not be created")

	engine.err = nil
	report, err := p.Run(context.Background(), pt.job)
	test.Error(t, err)
	test.T(t, report.Succeeded(), 2)
}

func TestPipelineWeightFallback(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", []byte("not a font"), twoBlocksCSS)
	pt.reader = fakeReader{err: errors.New("unknown font format")}
	report, err := pt.run()
	test.Error(t, err)

	test.T(t, report.Weight, StaticWeight(DefaultWeight))
	test.That(t, strings.Contains(pt.warnings.String(), "unknown font format"), pt.warnings.String())
	test.T(t, strings.Count(pt.stylesheet(t, "Example-Regular.css"), "font-weight: 400;"), 2)
}

func TestPipelineOverrides(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	pt.reader = fakeReader{axis: &Axis{"wght", 100.0, 400.0, 900.0}}
	pt.job.Family = "Example"
	pt.job.Weight = &FontWeight{700, 700, false}
	_, err := pt.run()
	test.Error(t, err)

	css := pt.stylesheet(t, "Example-Regular.css")
	test.T(t, strings.Count(css, "font-family: 'Example';"), 2)
	test.T(t, strings.Count(css, "font-weight: 700;"), 2)
}

func TestPipelineExistingOutputDir(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	test.Error(t, os.MkdirAll(pt.outputDir, 0755))
	_, err := pt.run()
	test.Error(t, err)

	// a second run replaces the output of the first
	pt.engine.errs = map[string]error{"U+0100-017F": &EngineError{ExitCode: 1}}
	report, err := pt.run()
	test.Error(t, err)
	test.T(t, report.Succeeded(), 1)
	if diff := cmp.Diff([]string{"Example-Regular.css", "Example-Regular_0.woff2"}, pt.files(t)); diff != "" {
		t.Errorf("output files mismatch (-want +got):\n%s", diff)
	}
}

func TestPipelineOptions(t *testing.T) {
	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	p := &Pipeline{Engine: pt.engine, Reader: pt.reader}
	_, err := p.Run(context.Background(), pt.job)
	test.Error(t, err)
	test.T(t, len(pt.engine.options), 2)
	if diff := cmp.Diff(DefaultSubsetOptions, pt.engine.options[0]); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	pt = newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	p = &Pipeline{
		Engine:  pt.engine,
		Reader:  pt.reader,
		Options: SubsetOptions{LayoutFeatures: []string{"kern", "liga"}, Hinting: true},
	}
	_, err = p.Run(context.Background(), pt.job)
	test.Error(t, err)
	expected := SubsetOptions{Flavor: "woff2", LayoutFeatures: []string{"kern", "liga"}, Hinting: true}
	for _, options := range pt.engine.options {
		if diff := cmp.Diff(expected, options); diff != "" {
			t.Errorf("options mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestPipelineContextDone(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	pt := newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	p := &Pipeline{Engine: pt.engine, Reader: pt.reader}
	report, err := p.Run(ctx, pt.job)
	test.That(t, errors.Is(err, context.DeadlineExceeded), "expected context.DeadlineExceeded, got", err)
	test.That(t, report != nil, "expected report")
	test.T(t, len(report.Results), 2)
	_, err = os.Stat(report.Stylesheet)
	test.Error(t, err)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	pt = newPipelineTest(t, "Example-Regular.ttf", staticFont(), twoBlocksCSS)
	p = &Pipeline{Engine: pt.engine, Reader: pt.reader}
	_, err = p.Run(ctx, pt.job)
	test.That(t, errors.Is(err, context.Canceled), "expected context.Canceled, got", err)
}
