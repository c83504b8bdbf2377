package analysis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/jonathan/cv-architect/internal/chrome"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/llm"
	"github.com/jonathan/cv-architect/internal/schemas"
)

// Kind classifies a user-facing failure.
type Kind string

const (
	KindMissingCredential   Kind = "MissingCredential"
	KindPayloadRejected     Kind = "PayloadRejected"
	KindQuotaExceeded       Kind = "QuotaExceeded"
	KindServiceUnavailable  Kind = "ServiceUnavailable"
	KindMalformedResponse   Kind = "MalformedResponse"
	KindInputValidation     Kind = "InputValidation"
	KindPresentationBlocked Kind = "PresentationBlocked"
	KindUnknown             Kind = "Unknown"
)

// Messages shown for each kind. Unknown and InputValidation carry their own text.
const (
	MessageMissingCredential   = "API Key is missing. Please set GEMINI_API_KEY (or API_KEY) in your environment."
	MessagePayloadRejected     = "The file or content was rejected by the AI. It might be too large or corrupted. Try a smaller PDF."
	MessageQuotaExceeded       = "Traffic limit exceeded (Quota). Please wait a minute and try again."
	MessageServiceUnavailable  = "AI Service is temporarily unavailable. Please try again later."
	MessageMalformedResponse   = "The AI returned an incomplete or invalid analysis. Please try again."
	MessagePresentationBlocked = "Unable to open a rendering surface for the report."
	MessageUnknown             = "An unexpected error occurred."
)

var kindMessages = map[Kind]string{
	KindMissingCredential:   MessageMissingCredential,
	KindPayloadRejected:     MessagePayloadRejected,
	KindQuotaExceeded:       MessageQuotaExceeded,
	KindServiceUnavailable:  MessageServiceUnavailable,
	KindMalformedResponse:   MessageMalformedResponse,
	KindPresentationBlocked: MessagePresentationBlocked,
}

// Failure is the single user-facing error type of the analysis pipelines.
type Failure struct {
	Kind    Kind
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// MarshalJSON exposes the kind and message; the cause stays internal.
func (f *Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind   `json:"kind"`
		Message string `json:"message"`
	}{f.Kind, f.Message})
}

// NewFailure builds a failure with the standard message for kind.
func NewFailure(kind Kind, cause error) *Failure {
	msg, ok := kindMessages[kind]
	if !ok {
		msg = fallbackMessage(cause)
	}
	return &Failure{Kind: kind, Message: msg, Cause: cause}
}

// InputFailure reports an input-validation problem with a specific message.
func InputFailure(message string, cause error) *Failure {
	return &Failure{Kind: KindInputValidation, Message: message, Cause: cause}
}

// Classify maps any pipeline error to a Failure. Structured signals are
// checked before the error text is inspected.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	var inputErr *ingestion.InputError
	if errors.As(err, &inputErr) {
		return InputFailure(inputErr.Error(), err)
	}
	if errors.Is(err, ErrNoCVContent) {
		return InputFailure(ErrNoCVContent.Error(), err)
	}

	if errors.Is(err, llm.ErrMissingAPIKey) {
		return NewFailure(KindMissingCredential, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 413:
			return NewFailure(KindPayloadRejected, err)
		case 429:
			return NewFailure(KindQuotaExceeded, err)
		case 500, 502, 503, 504:
			return NewFailure(KindServiceUnavailable, err)
		}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return NewFailure(KindPayloadRejected, err)
	}

	if isMalformed(err) {
		return NewFailure(KindMalformedResponse, err)
	}

	if errors.Is(err, chrome.ErrUnavailable) {
		return NewFailure(KindPresentationBlocked, err)
	}

	text := err.Error()
	switch {
	case strings.Contains(text, "API Key"):
		return NewFailure(KindMissingCredential, err)
	case strings.Contains(text, "400"):
		return NewFailure(KindPayloadRejected, err)
	case strings.Contains(text, "429"):
		return NewFailure(KindQuotaExceeded, err)
	case strings.Contains(text, "500"), strings.Contains(text, "503"):
		return NewFailure(KindServiceUnavailable, err)
	}

	return NewFailure(KindUnknown, err)
}

func isMalformed(err error) bool {
	if errors.Is(err, llm.ErrEmptyResponse) {
		return true
	}
	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

func fallbackMessage(cause error) string {
	if cause == nil {
		return MessageUnknown
	}
	if msg := strings.TrimSpace(cause.Error()); msg != "" {
		return msg
	}
	return MessageUnknown
}
