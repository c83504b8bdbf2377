package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CVPayload carries the CV either as extracted text or as inline binary
// content the model reads natively. Exactly one form is populated.
type CVPayload struct {
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     []byte `json:"data,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// TextPayload wraps extracted or pasted text.
func TextPayload(text string) CVPayload {
	return CVPayload{Text: text}
}

// BinaryPayload wraps inline file content.
func BinaryPayload(fileName, mimeType string, data []byte) CVPayload {
	return CVPayload{FileName: fileName, MIMEType: mimeType, Data: data}
}

// IsBinary reports whether the payload is inline binary content.
func (p CVPayload) IsBinary() bool {
	return len(p.Data) > 0
}

// IsEmpty reports whether the payload carries no CV content at all.
func (p CVPayload) IsEmpty() bool {
	return !p.IsBinary() && strings.TrimSpace(p.Text) == ""
}

// Kind names the payload form for logs and events.
func (p CVPayload) Kind() string {
	switch {
	case p.IsBinary():
		return "binary"
	case p.IsEmpty():
		return "empty"
	default:
		return "text"
	}
}

// AnalysisRequest is everything needed to build one analysis call.
// It is consumed once.
type AnalysisRequest struct {
	CV             CVPayload `json:"cv"`
	JobDescription string    `json:"jobDescription,omitempty" validate:"max=100000"`
	Market         Market    `json:"market" validate:"required,market"`
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("market", func(fl validator.FieldLevel) bool {
		return Market(fl.Field().String()).Valid()
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(CVPayload)
		if p.IsBinary() && strings.TrimSpace(p.Text) != "" {
			sl.ReportError(p.Text, "Text", "text", "exclusive", "")
		}
		if p.IsBinary() && p.MIMEType == "" {
			sl.ReportError(p.MIMEType, "MIMEType", "mimeType", "required_with_data", "")
		}
	}, CVPayload{})
	return v
}

// Validate checks field constraints. An empty payload is not reported here;
// the request builder owns that failure so it can fail before any network call
// with its own message.
func (r *AnalysisRequest) Validate() error {
	return requestValidator.Struct(r)
}
