package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/cv-architect/internal/types"
)

// MaxFileSize is the largest CV file accepted (20 MiB).
const MaxFileSize = 20 << 20

// MIME types of accepted and rejected formats.
const (
	MIMEPDF        = "application/pdf"
	MIMEJPEG       = "image/jpeg"
	MIMEPNG        = "image/png"
	MIMEWebP       = "image/webp"
	MIMEWordLegacy = "application/msword"
	MIMEWordDocx   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// inlineTypes are formats the model ingests natively.
var inlineTypes = map[string]bool{
	MIMEPDF:  true,
	MIMEJPEG: true,
	MIMEPNG:  true,
	MIMEWebP: true,
}

var extensionTypes = map[string]string{
	".pdf":  MIMEPDF,
	".jpg":  MIMEJPEG,
	".jpeg": MIMEJPEG,
	".png":  MIMEPNG,
	".webp": MIMEWebP,
	".doc":  MIMEWordLegacy,
	".docx": MIMEWordDocx,
}

// File is a fully read user upload.
type File struct {
	Name     string
	MIMEType string // as declared by the caller; may be empty
	Data     []byte
}

// Size returns the file size in bytes.
func (f *File) Size() int {
	return len(f.Data)
}

// ReadFile reads a CV from disk, enforcing the size ceiling before reading.
func ReadFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, inputError(ErrFileTooLarge, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadUpload(f, filepath.Base(path), "")
}

// ReadUpload reads an upload to completion. It stops after MaxFileSize+1 bytes
// so an oversized upload is rejected without buffering all of it.
func ReadUpload(r io.Reader, name, declaredType string) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, inputError(ErrFileTooLarge, nil)
	}
	return &File{Name: name, MIMEType: declaredType, Data: data}, nil
}

// TextExtractor turns a modern Word document into plain text.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Normalizer applies the size and type policy to CV uploads.
type Normalizer struct {
	// Docx extracts text from .docx files; nil means the extractor is unavailable.
	Docx TextExtractor
	// StrictPDF rejects PDFs the local reader cannot open instead of
	// letting the model decide.
	StrictPDF bool
	// PDFAsText sends the extracted text of a PDF instead of the file itself,
	// falling back to the file when no text layer exists.
	PDFAsText bool
	Logger    *slog.Logger
}

// NewNormalizer returns a Normalizer with the default Word extractor.
func NewNormalizer() *Normalizer {
	return &Normalizer{Docx: DocxExtractor{}, Logger: slog.Default()}
}

// Normalize converts an upload into a CV payload: inline binary for PDFs and
// images, extracted text for .docx. Nothing here contacts the model.
func (n *Normalizer) Normalize(ctx context.Context, f *File) (types.CVPayload, error) {
	if err := ctx.Err(); err != nil {
		return types.CVPayload{}, err
	}
	if f.Size() > MaxFileSize {
		return types.CVPayload{}, inputError(ErrFileTooLarge, nil)
	}
	if f.Size() == 0 {
		return types.CVPayload{}, inputError(ErrEmptyFile, nil)
	}

	mimeType := ResolveType(f)
	logger := n.logger()

	switch {
	case mimeType == MIMEWordLegacy:
		return types.CVPayload{}, inputError(ErrLegacyWordFormat, nil)

	case mimeType == MIMEWordDocx:
		if n.Docx == nil {
			return types.CVPayload{}, inputError(ErrExtractorUnavailable, nil)
		}
		text, err := n.Docx.ExtractText(f.Data)
		if err != nil {
			return types.CVPayload{}, inputError(ErrWordExtraction, err)
		}
		text = CleanText(text)
		if text == "" {
			return types.CVPayload{}, inputError(ErrWordExtraction, fmt.Errorf("document has no text"))
		}
		logger.Debug("extracted word document", "file", f.Name, "chars", len(text))
		return types.TextPayload(text), nil

	case mimeType == MIMEPDF:
		pages, err := PDFPageCount(f.Data)
		if err != nil {
			if n.StrictPDF {
				return types.CVPayload{}, inputError(ErrCorruptPDF, err)
			}
			logger.Warn("pdf could not be opened locally, sending as-is", "file", f.Name, "error", err)
		} else {
			logger.Debug("pdf accepted", "file", f.Name, "pages", pages)
			if n.PDFAsText {
				if text, err := PDFText(f.Data); err == nil && text != "" {
					return types.TextPayload(text), nil
				}
				logger.Debug("pdf has no text layer, sending file", "file", f.Name)
			}
		}
		return types.BinaryPayload(f.Name, mimeType, f.Data), nil

	case inlineTypes[mimeType]:
		return types.BinaryPayload(f.Name, mimeType, f.Data), nil

	default:
		return types.CVPayload{}, inputError(ErrUnsupportedType, nil)
	}
}

// FromText passes pasted text through unchanged.
func FromText(text string) types.CVPayload {
	return types.TextPayload(text)
}

// ResolveType decides a file's effective MIME type from its extension and
// declared type, sniffing the content when neither is conclusive. A legacy
// Word signal from either source wins so such files are always rejected.
func ResolveType(f *File) string {
	declared := normalizeMIME(f.MIMEType)
	byExt := extensionTypes[strings.ToLower(filepath.Ext(f.Name))]

	if declared == MIMEWordLegacy || byExt == MIMEWordLegacy {
		return MIMEWordLegacy
	}
	if known(declared) {
		return declared
	}
	if byExt != "" {
		return byExt
	}

	detected := mimetype.Detect(f.Data)
	for m := detected; m != nil; m = m.Parent() {
		if t := normalizeMIME(m.String()); known(t) {
			return t
		}
	}
	return declared
}

// DetectImageType sniffs an image upload, used by the headshot pipeline.
func DetectImageType(data []byte, declared string) (string, bool) {
	declared = normalizeMIME(declared)
	if strings.HasPrefix(declared, "image/") && inlineTypes[declared] {
		return declared, true
	}
	detected := normalizeMIME(mimetype.Detect(data).String())
	if strings.HasPrefix(detected, "image/") && inlineTypes[detected] {
		return detected, true
	}
	return "", false
}

func known(mimeType string) bool {
	return inlineTypes[mimeType] || mimeType == MIMEWordDocx || mimeType == MIMEWordLegacy
}

func normalizeMIME(m string) string {
	if idx := strings.Index(m, ";"); idx >= 0 {
		m = m[:idx]
	}
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "image/jpg" {
		return MIMEJPEG
	}
	return m
}

func (n *Normalizer) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

// isZip reports whether data starts with a zip local file header.
func isZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}
