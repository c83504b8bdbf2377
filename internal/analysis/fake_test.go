package analysis

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-architect/internal/llm"
	"github.com/jonathan/cv-architect/internal/types"
)

// fakeClient records every request and answers with a canned response.
type fakeClient struct {
	mu       sync.Mutex
	requests []*llm.Request
	response string
	err      error
	closed   bool
}

func (f *fakeClient) GenerateJSON(_ context.Context, req *llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.Task) string { return llm.DefaultAnalysisModel }

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// factoryFor returns a factory handing out client and counting how often it ran.
func factoryFor(client *fakeClient, built *int) llm.Factory {
	return func(_ context.Context, apiKey string) (llm.Client, error) {
		*built++
		if apiKey == "" {
			return nil, llm.ErrMissingAPIKey
		}
		return client, nil
	}
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "schemas", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

// fixtureWithCurrency rewrites the salary currency of the valid fixture.
func fixtureWithCurrency(t *testing.T, currency string) string {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(loadFixture(t, "valid_analysis.json")), &doc))
	doc["salaryEstimation"].(map[string]any)["currency"] = currency
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(out)
}

type fakeRecorder struct {
	items []types.HistoryItem
	err   error
}

func (r *fakeRecorder) Append(_ context.Context, result types.AnalysisResult, market types.Market) (types.HistoryItem, error) {
	if r.err != nil {
		return types.HistoryItem{}, r.err
	}
	item := types.HistoryItem{ID: "item-1", Title: types.HistoryTitle(&result), Score: result.Scores.Overall, Market: market, Result: result}
	r.items = append([]types.HistoryItem{item}, r.items...)
	return item, nil
}

type fakeNotifier struct {
	items []types.HistoryItem
	err   error
}

func (n *fakeNotifier) AnalysisCompleted(_ context.Context, item types.HistoryItem) error {
	n.items = append(n.items, item)
	return n.err
}
