// Package ingestion normalizes user-supplied CV files, pasted text, and job-description
// pages into the payloads the analysis request builder consumes.
package ingestion

import "errors"

// Input policy failures. Their messages are shown to the user verbatim.
//
//nolint:staticcheck // user-facing sentences
var (
	ErrFileTooLarge         = errors.New("File size exceeds 20MB limit. Please upload a compressed or smaller file.")
	ErrLegacyWordFormat     = errors.New("Legacy .doc format is not supported. Please save as .docx or PDF.")
	ErrUnsupportedType      = errors.New("Please upload a PDF, Word Doc (DOC/DOCX), or Image file.")
	ErrWordExtraction       = errors.New("Failed to read Word document. Please try saving as PDF.")
	ErrExtractorUnavailable = errors.New("Document parser not loaded. Please upload a PDF instead.")
	ErrCorruptPDF           = errors.New("The PDF could not be read. It might be corrupted. Try exporting it again.")
	ErrEmptyFile            = errors.New("The selected file is empty.")
)

// InputError is an input-validation failure detected before any network call.
// Reason is one of the policy errors above; Cause is the underlying error, if any.
type InputError struct {
	Reason error
	Cause  error
}

func (e *InputError) Error() string {
	return e.Reason.Error()
}

// Unwrap exposes both the policy reason and the underlying cause to errors.Is / errors.As.
func (e *InputError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Cause}
}

func inputError(reason, cause error) *InputError {
	return &InputError{Reason: reason, Cause: cause}
}
