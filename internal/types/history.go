package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryTitle is used when the model did not detect a role.
const DefaultHistoryTitle = "CV Analysis"

// HistoryItem is an immutable snapshot of one successful analysis.
type HistoryItem struct {
	ID        string         `json:"id"`
	CreatedAt int64          `json:"createdAt"`
	Title     string         `json:"title"`
	Score     Score          `json:"score"`
	Market    Market         `json:"market,omitempty"`
	Result    AnalysisResult `json:"result"`
}

// HistoryTitle derives the display title of a result.
func HistoryTitle(result *AnalysisResult) string {
	if title := strings.TrimSpace(result.JobTitleDetected); title != "" {
		return title
	}
	return DefaultHistoryTitle
}

// NewHistoryItem wraps a result with a fresh time-ordered id.
func NewHistoryItem(result AnalysisResult, market Market, now time.Time) (HistoryItem, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return HistoryItem{}, fmt.Errorf("failed to generate history id: %w", err)
	}
	return HistoryItem{
		ID:        id.String(),
		CreatedAt: now.UnixMilli(),
		Title:     HistoryTitle(&result),
		Score:     result.Scores.Overall,
		Market:    market,
		Result:    result,
	}, nil
}
