package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-architect/internal/config"
	"github.com/jonathan/cv-architect/internal/history"
	"github.com/jonathan/cv-architect/internal/logger"
	"github.com/jonathan/cv-architect/internal/types"
)

func newMemoryStore(t *testing.T) *history.Store {
	t.Helper()
	store := history.NewStore(history.NewMemoryBackend(), history.WithLogger(logger.Discard()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store *history.Store, title, coverLetter string) types.HistoryItem {
	t.Helper()
	item, err := store.Append(context.Background(), types.AnalysisResult{
		JobTitleDetected: title,
		Summary:          "Solid backend profile.",
		Scores:           types.Scores{Overall: 72},
		CoverLetter:      coverLetter,
	}, types.MarketGlobal)
	require.NoError(t, err)
	return item
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "analyze", "headshot", "history", "report", "template", "cover-letter", "token"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := map[string]bool{}
	for _, c := range historyCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"list": true, "show": true, "delete": true}, sub)
}

func TestAnalyzeCommand_FlagGroups(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no cv source", []string{"analyze"}, "is required"},
		{"two cv sources", []string{"analyze", "--text", "cv", "--text-file", "cv.txt"}, "none of the others can be"},
		{"two jd sources", []string{"analyze", "--text", "cv", "--jd", "a", "--job-url", "https://x"}, "none of the others can be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(tt.args)
			t.Cleanup(func() {
				rootCmd.SetArgs(nil)
				for _, name := range []string{"text", "text-file", "file", "jd", "jd-file", "job-url"} {
					_ = analyzeCmd.Flags().Set(name, "")
					analyzeCmd.Flags().Lookup(name).Changed = false
				}
			})

			err := rootCmd.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCVFormInput(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Go developer"), 0o644))
	pdfPath := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644))

	in, err := cvFormInput("", "pasted", "")
	require.NoError(t, err)
	assert.Equal(t, "pasted", in.CVText)
	assert.Nil(t, in.File)

	in, err = cvFormInput("", "", textPath)
	require.NoError(t, err)
	assert.Equal(t, "Go developer", in.CVText)

	in, err = cvFormInput(pdfPath, "", "")
	require.NoError(t, err)
	require.NotNil(t, in.File)
	assert.Equal(t, "cv.pdf", in.File.Name)

	_, err = cvFormInput("", "", "")
	assert.Error(t, err)
	_, err = cvFormInput(pdfPath, "text", "")
	assert.Error(t, err)
	_, err = cvFormInput(filepath.Join(dir, "missing.pdf"), "", "")
	assert.Error(t, err)
}

func TestJobDescriptionInput(t *testing.T) {
	ctx := context.Background()
	noFetch := func(context.Context, string) (string, error) {
		t.Fatal("fetch must not be called")
		return "", nil
	}

	jd, err := jobDescriptionInput(ctx, "inline", "", "", noFetch)
	require.NoError(t, err)
	assert.Equal(t, "inline", jd)

	jd, err = jobDescriptionInput(ctx, "", "", "", noFetch)
	require.NoError(t, err)
	assert.Empty(t, jd)

	path := filepath.Join(t.TempDir(), "jd.txt")
	require.NoError(t, os.WriteFile(path, []byte("Senior SRE\n\nKubernetes"), 0o644))
	jd, err = jobDescriptionInput(ctx, "", path, "", noFetch)
	require.NoError(t, err)
	assert.Contains(t, jd, "Senior SRE")

	var fetched string
	jd, err = jobDescriptionInput(ctx, "", "", "https://jobs.example.com/7", func(_ context.Context, url string) (string, error) {
		fetched = url
		return "Fetched role", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Fetched role", jd)
	assert.Equal(t, "https://jobs.example.com/7", fetched)

	_, err = jobDescriptionInput(ctx, "", "", "https://x", func(context.Context, string) (string, error) {
		return "", errors.New("timeout")
	})
	assert.ErrorContains(t, err, "failed to fetch job description")
}

func TestHistoryCommands(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	var out bytes.Buffer
	require.NoError(t, listHistory(ctx, store, &out, time.UTC))
	assert.Contains(t, out.String(), "No saved analyses yet.")

	first := seed(t, store, "Data Engineer", "")
	second := seed(t, store, "Platform Engineer", "")

	out.Reset()
	require.NoError(t, listHistory(ctx, store, &out, time.UTC))
	assert.Contains(t, out.String(), "HISTORY (2)")
	assert.Less(t, bytes.Index(out.Bytes(), []byte(second.ID)), bytes.Index(out.Bytes(), []byte(first.ID)))

	out.Reset()
	require.NoError(t, showHistory(ctx, store, &out, first.ID, true, false))
	var got types.HistoryItem
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Data Engineer", got.Title)

	out.Reset()
	require.NoError(t, showHistory(ctx, store, &out, first.ID, false, false))
	assert.Contains(t, out.String(), "Data Engineer")

	err := showHistory(ctx, store, &out, "nope", false, false)
	assert.ErrorIs(t, err, history.ErrNotFound)

	out.Reset()
	require.NoError(t, deleteHistory(ctx, store, &out, first.ID))
	assert.Equal(t, "Deleted "+first.ID+"\n", out.String())
	require.NoError(t, deleteHistory(ctx, store, &out, first.ID))
	assert.Len(t, store.LoadAll(ctx), 1)
}

func TestExportCoverLetter(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	with := seed(t, store, "Analyst", "Dear hiring manager,\nThank you.")
	without := seed(t, store, "Analyst", "")
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, exportCoverLetter(ctx, store, &out, with.ID, dir))
	data, err := os.ReadFile(filepath.Join(dir, "Cover_Letter.doc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dear hiring manager,<br/>Thank you.")

	assert.ErrorContains(t, exportCoverLetter(ctx, store, &out, without.ID, dir), "no cover letter")
	assert.ErrorIs(t, exportCoverLetter(ctx, store, &out, "missing", dir), history.ErrNotFound)
}

func TestTemplateCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"template", "executive", "--out", dir})
	t.Setenv("HISTORY_BACKEND", "memory")
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	_, err := os.Stat(filepath.Join(dir, "Modern_Executive_CV_Template.doc"))
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Modern_Executive_CV_Template.doc")
}

func TestWriteReportHTML(t *testing.T) {
	store := newMemoryStore(t)
	item := seed(t, store, "QA Lead", "")
	path := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, writeReportHTML(path, item))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CV Analysis Report - QA Lead")
}

func TestOpenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	cfg := &config.Config{HistoryBackend: history.BackendFile, HistoryPath: path}

	store, err := openStore(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	seed(t, store, "Designer", "")
	require.NoError(t, store.Close())

	reopened, err := openStore(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	items := reopened.LoadAll(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "Designer", items[0].Title)
}

func TestOpenNotifier_WithoutBroker(t *testing.T) {
	n := openNotifier(&config.Config{}, logger.Discard())
	assert.NoError(t, n.AnalysisCompleted(context.Background(), types.HistoryItem{}))
	assert.NoError(t, n.Close())
}

func TestMarketListAndTemplateKinds(t *testing.T) {
	assert.Contains(t, marketList(), "Asia/South Asia")
	assert.Equal(t, []string{"ats", "executive", "fresher"}, templateKinds())
}
