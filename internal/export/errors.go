// Package export captures rendered documents and encodes them into PDF and
// image artifacts, or hands them to a print pipeline.
package export

import (
	"errors"
	"fmt"
)

var (
	// ErrCaptureTargetMissing is returned when there is no visual tree to capture.
	ErrCaptureTargetMissing = errors.New("capture target missing")
	// ErrExportInFlight is returned when an export of the same document is already running.
	ErrExportInFlight = errors.New("export already in progress")
	// ErrEmptyRaster is returned when a capture produced no pixels.
	ErrEmptyRaster = errors.New("raster has no pixels")
)

// RasterizationError represents a failure while capturing a visual tree
type RasterizationError struct {
	Message string
	Cause   error
}

func (e *RasterizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rasterization error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rasterization error: %s", e.Message)
}

func (e *RasterizationError) Unwrap() error {
	return e.Cause
}

// EncodingError represents a failure while paginating or serializing a raster
type EncodingError struct {
	Message string
	Cause   error
}

func (e *EncodingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("encoding error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("encoding error: %s", e.Message)
}

func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// OptionsError represents an invalid export option
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid export option %s: %s", e.Field, e.Message)
}

// PrintError represents a failure handing a document to the print pipeline
type PrintError struct {
	Message string
	Cause   error
}

func (e *PrintError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("print error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("print error: %s", e.Message)
}

func (e *PrintError) Unwrap() error {
	return e.Cause
}
