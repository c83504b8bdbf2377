package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-architect/internal/logger"
	"github.com/jonathan/cv-architect/internal/types"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testItem() types.HistoryItem {
	return types.HistoryItem{
		ID:        "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b",
		CreatedAt: 1_750_000_000_000,
		Title:     "Senior Backend Engineer",
		Score:     75,
		Market:    types.MarketBangladesh,
		Result:    types.AnalysisResult{Summary: "private CV summary", CoverLetter: "Dear hiring manager"},
	}
}

func TestAMQPPublisher_AnalysisCompleted(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "", logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"cv_architect:topic"}, ch.declared)

	require.NoError(t, p.AnalysisCompleted(context.Background(), testItem()))
	require.Len(t, ch.published, 1)

	got := ch.published[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, "analysis.completed", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var event map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &event))
	assert.Equal(t, "Senior Backend Engineer", event["title"])
	assert.EqualValues(t, 75, event["score"])
	assert.Equal(t, "Bangladesh", event["market"])
	assert.EqualValues(t, 1_750_000_000_000, event["createdAt"])
	assert.NotContains(t, string(got.msg.Body), "private CV summary")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newPublisher(ch, "custom", logger.Discard())
	require.NoError(t, err)

	err = p.AnalysisCompleted(context.Background(), testItem())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.completed")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.AnalysisCompleted(context.Background(), testItem()))
	assert.NoError(t, Nop{}.Close())
}

func TestDialAMQP_Integration(t *testing.T) {
	url := os.Getenv("AMQP_URL")
	if url == "" || testing.Short() {
		t.Skip("Skipping integration test: AMQP_URL not set")
	}
	p, err := DialAMQP(url, "cv_architect_test", logger.Discard())
	if err != nil {
		t.Skipf("Skipping integration test: broker unreachable: %v", err)
	}
	defer func() { _ = p.Close() }()

	assert.NoError(t, p.AnalysisCompleted(context.Background(), testItem()))
}

func TestDialAMQP_EmptyURL(t *testing.T) {
	_, err := DialAMQP("", "", nil)
	assert.Error(t, err)
}
