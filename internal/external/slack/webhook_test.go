package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
)

func TestBuildPayload(t *testing.T) {
	payload := BuildPayload("Propopol Stock Predictor", "# title\n\n|a|b|\n")

	assert.Equal(t, "Propopol Stock Predictor", payload.Text)
	require.Len(t, payload.Blocks, 4)
	assert.Equal(t, "section", payload.Blocks[0].Type)
	assert.Equal(t, "mrkdwn", payload.Blocks[0].Text.Type)
	assert.Equal(t, "# title", payload.Blocks[0].Text.Text)
	assert.Equal(t, "divider", payload.Blocks[1].Type)
	assert.Nil(t, payload.Blocks[1].Text)
	assert.Equal(t, "|a|b|", payload.Blocks[2].Text.Text)
}

func TestWebhook_Publish(t *testing.T) {
	var got Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	hook := NewWebhook(httputil.New(logger.Nop()).DisableRetry(), server.URL, "Propopol Stock Predictor", logger.Nop())

	err := hook.Publish(context.Background(), &contracts.Report{}, "line1\nline2")
	require.NoError(t, err)
	assert.Len(t, got.Blocks, 4)
}

func TestWebhook_PublishFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	hook := NewWebhook(httputil.New(logger.Nop()).DisableRetry(), server.URL, "x", logger.Nop())

	err := hook.Publish(context.Background(), &contracts.Report{}, "line")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
