package naver

import (
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
)

// ProviderName identifies Naver in cache keys and logs
const ProviderName = "naver"

// Client handles communication with the Naver Finance chart API
// ⭐ SSOT: Naver Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	chartURL   string
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, chartURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		chartURL:   chartURL,
	}
}

// Name implements contracts.QuoteProvider
func (c *Client) Name() string {
	return ProviderName
}
