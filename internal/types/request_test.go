package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCVPayload_Kind(t *testing.T) {
	assert.Equal(t, "text", TextPayload("Go engineer").Kind())
	assert.Equal(t, "empty", TextPayload("  \n").Kind())
	assert.Equal(t, "binary", BinaryPayload("cv.pdf", "application/pdf", []byte("%PDF")).Kind())
	assert.True(t, CVPayload{}.IsEmpty())
}

func TestAnalysisRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     AnalysisRequest
		wantErr bool
	}{
		{
			name: "text payload",
			req:  AnalysisRequest{CV: TextPayload("Go engineer"), Market: MarketGlobal},
		},
		{
			name: "binary payload",
			req:  AnalysisRequest{CV: BinaryPayload("cv.pdf", "application/pdf", []byte("%PDF")), Market: MarketBangladesh},
		},
		{
			name: "empty payload is left to the builder",
			req:  AnalysisRequest{Market: MarketTech},
		},
		{
			name:    "unknown market",
			req:     AnalysisRequest{CV: TextPayload("x"), Market: "Mars"},
			wantErr: true,
		},
		{
			name:    "missing market",
			req:     AnalysisRequest{CV: TextPayload("x")},
			wantErr: true,
		},
		{
			name: "both text and binary",
			req: AnalysisRequest{
				CV:     CVPayload{Text: "x", MIMEType: "application/pdf", Data: []byte("%PDF")},
				Market: MarketGlobal,
			},
			wantErr: true,
		},
		{
			name: "binary without mime type",
			req: AnalysisRequest{
				CV:     CVPayload{Data: []byte("%PDF")},
				Market: MarketGlobal,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
