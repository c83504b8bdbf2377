// Package rendering turns analyses into printable reports, PDFs and
// Word-compatible documents.
package rendering

import (
	"errors"
	"fmt"
)

// MessagePopupBlocked is shown when no viewer can be opened for a report.
const MessagePopupBlocked = "Please allow popups to download the report."

// ErrNoViewer is returned when a report cannot be handed to a viewer.
var ErrNoViewer = errors.New(MessagePopupBlocked)

// TemplateError represents an error parsing or executing a template
type TemplateError struct {
	Name    string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s: %s", e.Name, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
