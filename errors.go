package fontmatrix

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks an invalid configuration. Nothing is rasterized or
	// written when it is returned.
	ErrConfig = errors.New("configuration error")

	// ErrResource marks a font or output file that could not be read,
	// parsed or written.
	ErrResource = errors.New("resource error")

	// ErrSearchBound is returned when the ascending size scan reaches its
	// upper bound without the measurement ever exceeding the limit.
	ErrSearchBound = fmt.Errorf("%w: font size search reached its upper bound", ErrConfig)

	// ErrNoInk is returned when no character of the alphabet has visible ink.
	ErrNoInk = fmt.Errorf("%w: alphabet has no visible glyphs", ErrConfig)

	// ErrRowWidth is returned when a row handed to the encoder is wider
	// than the table.
	ErrRowWidth = errors.New("row wider than table")
)

// Pipeline stages reported by StageError.
const (
	StageConfig    = "config"
	StageFont      = "font"
	StageResolve   = "resolve"
	StageMeasure   = "measure"
	StageRasterize = "rasterize"
	StageEncode    = "encode"
	StageWrite     = "write"
	StagePreview   = "preview"
)

// StageError names the pipeline stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// stageErr wraps err with stage unless it already carries one.
func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// configErr builds an ErrConfig with a formatted reason.
func configErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
