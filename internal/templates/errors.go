// Package templates renders CV documents into HTML visual trees using a
// registry of named templates.
package templates

import "fmt"

// TemplateError represents an error parsing or executing an HTML layout
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RootNotFoundError is returned when a document has no capture root
type RootNotFoundError struct {
	Message string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("capture root not found: %s", e.Message)
}
