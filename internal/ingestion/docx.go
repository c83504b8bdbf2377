package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxExtractor reads the body text of a .docx file.
type DocxExtractor struct{}

// ExtractText implements TextExtractor.
func (DocxExtractor) ExtractText(data []byte) (string, error) {
	if !isZip(data) {
		return "", errors.New("not a docx archive")
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText flattens WordprocessingML into plain text: runs inside a
// paragraph are concatenated, paragraphs become lines.
func documentXMLText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
