package rendering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordDocument(t *testing.T) {
	doc := WordDocument("x.doc", "<p>Hello</p>")
	body := string(doc.Body)

	assert.True(t, strings.HasPrefix(body, "\ufeff<html xmlns:o='urn:schemas-microsoft-com:office:office'"))
	assert.Contains(t, body, "font-family: Calibri, Arial, sans-serif; font-size: 11pt;")
	assert.Contains(t, body, "<body><p>Hello</p></body></html>")
	assert.Equal(t, "application/msword", doc.ContentType)
	assert.Equal(t, `attachment; filename="x.doc"`, doc.ContentDisposition())
}

func TestCoverLetter(t *testing.T) {
	doc := CoverLetter("Dear Hiring Manager,\r\n\nI build <fast> Go services & APIs.\nRegards")
	body := string(doc.Body)

	assert.Equal(t, "Cover_Letter.doc", doc.Filename)
	assert.Contains(t, body, "<p>Dear Hiring Manager,<br/><br/>I build &lt;fast&gt; Go services &amp; APIs.<br/>Regards</p>")
}

func TestCVTemplate(t *testing.T) {
	tests := []struct {
		kind     string
		filename string
		marker   string
	}{
		{"ats", "ATS_Standard_CV_Template.doc", "CORE COMPETENCIES"},
		{"Executive", "Modern_Executive_CV_Template.doc", "SENIOR EXECUTIVE PROFILE"},
		{" fresher ", "Academic_Fresher_CV_Template.doc", "PROJECTS"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			doc, err := CVTemplate(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.filename, doc.Filename)
			assert.Contains(t, string(doc.Body), tt.marker)
			assert.Equal(t, WordContentType, doc.ContentType)
		})
	}

	_, err := CVTemplate("modern")
	assert.Error(t, err)
}

func TestTemplateKinds(t *testing.T) {
	assert.Equal(t, []TemplateKind{TemplateATS, TemplateExecutive, TemplateFresher}, TemplateKinds())
}

func TestViewerCommand(t *testing.T) {
	name, _ := viewerCommand("darwin")
	assert.Equal(t, "open", name)
	name, _ = viewerCommand("linux")
	assert.Equal(t, "xdg-open", name)
	name, args := viewerCommand("windows")
	assert.Equal(t, "rundll32", name)
	assert.NotEmpty(t, args)
}
