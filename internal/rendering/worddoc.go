package rendering

import (
	"fmt"
	"html"
	"strings"
)

// WordContentType is the content type of Word-compatible HTML documents.
const WordContentType = "application/msword"

const wordHeader = `<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head><meta charset="utf-8"><title>Document</title>
<style>body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; line-height: 1.5; }</style>
</head><body>`

const wordFooter = `</body></html>`

// byteOrderMark lets Word detect UTF-8.
const byteOrderMark = "\ufeff"

// Document is a downloadable file.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ContentDisposition returns the attachment header value for the document.
func (d Document) ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", d.Filename)
}

// WordDocument wraps trusted HTML content in an Office-namespaced page that
// word processors open as a document.
func WordDocument(filename, content string) Document {
	var sb strings.Builder
	sb.Grow(len(byteOrderMark) + len(wordHeader) + len(content) + len(wordFooter))
	sb.WriteString(byteOrderMark)
	sb.WriteString(wordHeader)
	sb.WriteString(content)
	sb.WriteString(wordFooter)
	return Document{Filename: filename, ContentType: WordContentType, Body: []byte(sb.String())}
}

// CoverLetterFilename is the download name of the cover letter.
const CoverLetterFilename = "Cover_Letter.doc"

// CoverLetter exports a generated cover letter. The text is escaped and its
// line breaks preserved.
func CoverLetter(letter string) Document {
	escaped := html.EscapeString(strings.ReplaceAll(letter, "\r\n", "\n"))
	return WordDocument(CoverLetterFilename, "<p>"+strings.ReplaceAll(escaped, "\n", "<br/>")+"</p>")
}
