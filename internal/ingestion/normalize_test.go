package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Senior </w:t></w:r><w:r><w:t>Go Engineer</w:t></w:r></w:p>
<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go, Kubernetes</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml":            body,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText([]byte) (string, error) {
	return s.text, s.err
}

func TestReadUpload_SizeLimit(t *testing.T) {
	_, err := ReadUpload(bytes.NewReader(make([]byte, MaxFileSize+1)), "big.pdf", MIMEPDF)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	f, err := ReadUpload(bytes.NewReader(make([]byte, MaxFileSize)), "exact.pdf", MIMEPDF)
	require.NoError(t, err)
	assert.Equal(t, MaxFileSize, f.Size())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", f.Name)
	assert.Equal(t, pngHeader, f.Data)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}

func TestNormalize_Rejections(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name   string
		file   *File
		reason error
	}{
		{
			name:   "oversized",
			file:   &File{Name: "cv.pdf", MIMEType: MIMEPDF, Data: make([]byte, MaxFileSize+1)},
			reason: ErrFileTooLarge,
		},
		{
			name:   "empty",
			file:   &File{Name: "cv.pdf", MIMEType: MIMEPDF},
			reason: ErrEmptyFile,
		},
		{
			name:   "legacy doc by extension",
			file:   &File{Name: "cv.DOC", Data: []byte("binary")},
			reason: ErrLegacyWordFormat,
		},
		{
			name:   "legacy doc by declared type",
			file:   &File{Name: "cv", MIMEType: "application/msword", Data: []byte("binary")},
			reason: ErrLegacyWordFormat,
		},
		{
			name:   "plain text file",
			file:   &File{Name: "cv.txt", MIMEType: "text/plain", Data: []byte("hello")},
			reason: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), tt.file)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.reason)

			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.reason.Error(), inputErr.Error())
		})
	}
}

func TestNormalize_Docx(t *testing.T) {
	data := buildDocx(t, documentXML)

	payload, err := NewNormalizer().Normalize(context.Background(), &File{Name: "cv.docx", Data: data})
	require.NoError(t, err)

	assert.False(t, payload.IsBinary())
	assert.Contains(t, payload.Text, "Jane Doe")
	assert.Contains(t, payload.Text, "Senior Go Engineer")
	assert.Contains(t, payload.Text, "Skills:")
	assert.Contains(t, payload.Text, "Go, Kubernetes")
}

func TestNormalize_DocxFailures(t *testing.T) {
	file := &File{Name: "cv.docx", MIMEType: MIMEWordDocx, Data: []byte("PK\x03\x04 broken")}

	t.Run("extractor error", func(t *testing.T) {
		cause := errors.New("zip: not a valid zip file")
		n := &Normalizer{Docx: stubExtractor{err: cause}}

		_, err := n.Normalize(context.Background(), file)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWordExtraction)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty document", func(t *testing.T) {
		n := &Normalizer{Docx: stubExtractor{text: "  \n "}}
		_, err := n.Normalize(context.Background(), file)
		assert.ErrorIs(t, err, ErrWordExtraction)
	})

	t.Run("extractor unavailable", func(t *testing.T) {
		n := &Normalizer{}
		_, err := n.Normalize(context.Background(), file)
		assert.ErrorIs(t, err, ErrExtractorUnavailable)
	})

	t.Run("real extractor on garbage", func(t *testing.T) {
		_, err := NewNormalizer().Normalize(context.Background(), file)
		assert.ErrorIs(t, err, ErrWordExtraction)
	})
}

func TestNormalize_Images(t *testing.T) {
	tests := []struct {
		name     string
		file     *File
		wantMIME string
	}{
		{"declared png", &File{Name: "cv.png", MIMEType: "image/png", Data: pngHeader}, MIMEPNG},
		{"sniffed png without extension", &File{Name: "upload", Data: pngHeader}, MIMEPNG},
		{"image/jpg alias", &File{Name: "scan", MIMEType: "image/jpg", Data: jpegHeader}, MIMEJPEG},
		{"jpeg by extension", &File{Name: "scan.JPEG", Data: jpegHeader}, MIMEJPEG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := NewNormalizer().Normalize(context.Background(), tt.file)
			require.NoError(t, err)
			assert.True(t, payload.IsBinary())
			assert.Equal(t, tt.wantMIME, payload.MIMEType)
			assert.Equal(t, tt.file.Data, payload.Data)
		})
	}
}

func TestNormalize_PDF(t *testing.T) {
	notReallyPDF := []byte("%PDF-1.4\nthis is not a valid body")

	t.Run("lenient passes through", func(t *testing.T) {
		payload, err := NewNormalizer().Normalize(context.Background(), &File{Name: "cv.pdf", Data: notReallyPDF})
		require.NoError(t, err)
		assert.True(t, payload.IsBinary())
		assert.Equal(t, MIMEPDF, payload.MIMEType)
		assert.Equal(t, "cv.pdf", payload.FileName)
	})

	t.Run("strict rejects", func(t *testing.T) {
		n := NewNormalizer()
		n.StrictPDF = true
		_, err := n.Normalize(context.Background(), &File{Name: "cv.pdf", Data: notReallyPDF})
		assert.ErrorIs(t, err, ErrCorruptPDF)
	})
}

func TestNormalize_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNormalizer().Normalize(ctx, &File{Name: "cv.png", Data: pngHeader})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromText_Unchanged(t *testing.T) {
	text := "  Jane   Doe\n\n\n\nGo engineer  "
	payload := FromText(text)
	assert.Equal(t, text, payload.Text)
	assert.False(t, payload.IsBinary())
}

func TestDetectImageType(t *testing.T) {
	mime, ok := DetectImageType(pngHeader, "")
	assert.True(t, ok)
	assert.Equal(t, MIMEPNG, mime)

	mime, ok = DetectImageType(jpegHeader, "image/jpg")
	assert.True(t, ok)
	assert.Equal(t, MIMEJPEG, mime)

	_, ok = DetectImageType([]byte(strings.Repeat("text ", 10)), "text/plain")
	assert.False(t, ok)
}

func TestDocumentXMLText(t *testing.T) {
	text, err := documentXMLText(documentXML)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe\n")
	assert.Contains(t, text, "Skills:\tGo, Kubernetes")

	_, err = documentXMLText("<w:p><w:t>unterminated")
	assert.Error(t, err)
}
