package fontsplit

import (
	"errors"
	"fmt"
)

// ErrMissingDependency is returned when the subsetting engine is not available.
var ErrMissingDependency = errors.New("missing dependency")

// ErrSourceFontNotFound is returned when the source font file does not exist.
var ErrSourceFontNotFound = errors.New("source font not found")

// ErrReferenceNotFound is returned when the reference stylesheet cannot be read.
var ErrReferenceNotFound = errors.New("reference stylesheet not found")

// ErrNoRangesFound is returned when the reference stylesheet has no unicode-range declarations.
var ErrNoRangesFound = errors.New("no unicode-ranges found in reference stylesheet")

// ErrWeightDetection accompanies the fallback weight when the font metadata could not be read.
var ErrWeightDetection = errors.New("could not detect font weight")

// ErrSubsetEngine is returned when the engine fails for a range or produces no output.
var ErrSubsetEngine = errors.New("subset engine failed")

// ErrSubsetException is returned when the engine could not be invoked at all.
var ErrSubsetException = errors.New("subset engine error")

// ErrInvalidSelector is returned for malformed code point selectors.
var ErrInvalidSelector = errors.New("invalid unicode selector")

// ErrInvalidRelease is returned when publishing would remove the files being released or more than the previous release.
var ErrInvalidRelease = errors.New("invalid release target")

// ErrInvalidWeight is returned for malformed font-weight values.
var ErrInvalidWeight = errors.New("invalid font weight")

// EngineError is the failure of an external engine process, holding its exit status and diagnostics.
type EngineError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (err *EngineError) Error() string {
	msg := fmt.Sprintf("exit status %d", err.ExitCode)
	if err.Err != nil {
		msg = err.Err.Error()
	}
	if err.Stderr != "" {
		msg += ": " + err.Stderr
	}
	return msg
}

func (err *EngineError) Is(target error) bool {
	return target == ErrSubsetEngine
}

func (err *EngineError) Unwrap() error {
	return err.Err
}
