package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
)

func newTestServer(t *testing.T, issues *[]createIssueRequest, paths *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*paths = append(*paths, r.Method+" "+r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/user":
			w.Write([]byte(`{"login":"wonny"}`))
		case r.Method == http.MethodPost:
			var req createIssueRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			*issues = append(*issues, req)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"number":7,"html_url":"https://github.com/wonny/propopol/issues/7","title":"t"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_PublishResolvesOwner(t *testing.T) {
	var issues []createIssueRequest
	var paths []string
	server := newTestServer(t, &issues, &paths)
	defer server.Close()

	client := NewClient(httputil.New(logger.Nop()).DisableRetry(), server.URL, "secret", "propopol", logger.Nop())
	report := &contracts.Report{Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Horizon: 14}

	err := client.Publish(context.Background(), report, "# body")
	require.NoError(t, err)

	assert.Equal(t, []string{"GET /user", "POST /repos/wonny/propopol/issues"}, paths)
	require.Len(t, issues, 1)
	assert.Equal(t, "2026-10-19 stock_prediction(after 14 days)", issues[0].Title)
	assert.Equal(t, "# body", issues[0].Body)
}

func TestClient_CreateIssueWithOwner(t *testing.T) {
	var issues []createIssueRequest
	var paths []string
	server := newTestServer(t, &issues, &paths)
	defer server.Close()

	client := NewClient(httputil.New(logger.Nop()).DisableRetry(), server.URL, "secret", "acme/stocks", logger.Nop())

	issue, err := client.CreateIssue(context.Background(), "title", "body")
	require.NoError(t, err)
	assert.Equal(t, 7, issue.Number)
	assert.Equal(t, []string{"POST /repos/acme/stocks/issues"}, paths)
}

func TestClient_CreateIssueFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	client := NewClient(httputil.New(logger.Nop()).DisableRetry(), server.URL, "bad", "acme/stocks", logger.Nop())

	_, err := client.CreateIssue(context.Background(), "title", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad credentials")
}
