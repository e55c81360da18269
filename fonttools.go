package fontsplit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// FontTools is the subsetting engine of the fontTools Python library, run as an external process.
type FontTools struct {
	Python string // Python interpreter, defaults to python3
	Module string // subset module, defaults to fontTools.subset
}

func (ft FontTools) python() string {
	if ft.Python == "" {
		return "python3"
	}
	return ft.Python
}

func (ft FontTools) module() string {
	if ft.Module == "" {
		return "fontTools.subset"
	}
	return ft.Module
}

// Check verifies that the interpreter exists and that fontTools and brotli (needed for WOFF2) can be imported.
func (ft FontTools) Check(ctx context.Context) error {
	python, err := exec.LookPath(ft.python())
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, python, "-c", fmt.Sprintf("import %s, brotli", ft.module()))
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndexByte(msg, '\n'); i != -1 {
			msg = msg[i+1:]
		}
		return fmt.Errorf("fontTools and brotli are required, install with 'pip install fonttools brotli': %s", msg)
	}
	return nil
}

// Args returns the command line arguments passed to the interpreter.
func (ft FontTools) Args(fontPath, outputPath, selector string, options SubsetOptions) []string {
	args := []string{
		"-m", ft.module(),
		fontPath,
		"--output-file=" + outputPath,
		"--unicodes=" + selector,
	}
	if options.Flavor != "" {
		args = append(args, "--flavor="+options.Flavor)
	}
	if len(options.LayoutFeatures) != 0 {
		args = append(args, "--layout-features="+strings.Join(options.LayoutFeatures, ","))
	}
	if !options.Hinting {
		args = append(args, "--no-hinting")
	}
	if options.Desubroutinize {
		args = append(args, "--desubroutinize")
	}
	return args
}

// Subset implements Subsetter. A non-zero exit status is returned as an *EngineError.
func (ft FontTools) Subset(ctx context.Context, fontPath, outputPath, selector string, options SubsetOptions) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ft.python(), ft.Args(fontPath, outputPath, selector, options)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &EngineError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return err
	}
	return nil
}
