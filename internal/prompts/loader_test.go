package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		key     string
		want    string
		wantErr string
	}{
		{name: "analysis prompt", file: AnalysisFile, key: "analyze-cv", want: "Senior HR Consultant"},
		{name: "headshot prompt", file: HeadshotFile, key: "analyze-headshot", want: "score out of 100"},
		{name: "unknown file", file: "nonexistent.json", key: "analyze-cv", wantErr: "unknown prompt file"},
		{name: "unknown key", file: AnalysisFile, key: "nonexistent-key", wantErr: "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Get(tt.file, tt.key)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	text := "Analyze for the {{.Market}} market in {{.Currency}}. {{.JobDescription}}"
	got := Format(text, map[string]string{"Market": "Bangladesh", "Currency": "BDT"})
	assert.Equal(t, "Analyze for the Bangladesh market in BDT. {{.JobDescription}}", got)
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	got := Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "b"})
	assert.Equal(t, "{{.B}} b", got)
}

func TestRender(t *testing.T) {
	out, err := Render(AnalysisFile, "cv-text", map[string]string{"CVText": "Go engineer"})
	require.NoError(t, err)
	assert.Equal(t, "CV TEXT CONTENT:\nGo engineer", out)

	// User content that looks like a placeholder is kept verbatim.
	out, err = Render(AnalysisFile, "job-description", map[string]string{"JobDescription": "needs {{.Skill}}"})
	require.NoError(t, err)
	assert.Contains(t, out, "needs {{.Skill}}")

	_, err = Render(AnalysisFile, "cv-text", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value for CVText")

	_, err = Render(AnalysisFile, "missing", nil)
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	text, err := Get(AnalysisFile, "analyze-cv")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Market", "SalaryPeriod", "Currency", "SalaryPeriodLower", "SalaryLocale", "JobDescription"},
		Placeholders(text))
	assert.Empty(t, Placeholders("no placeholders here"))
}

func TestKeys(t *testing.T) {
	keys, err := Keys(AnalysisFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"analyze-cv", "cv-text", "job-description", "job-description-missing", "system-instruction"}, keys)

	_, err = Keys("nope.json")
	assert.Error(t, err)
}

func TestSystemInstruction(t *testing.T) {
	instruction, err := Get(AnalysisFile, "system-instruction")
	require.NoError(t, err)
	assert.Equal(t, "You are an expert CV & Career Architect. Provide critical, actionable, HR-grade feedback. Always estimate salary based on the specific market requested.", instruction)
}
