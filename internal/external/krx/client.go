package krx

import (
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
)

// Client handles the KRX KIND corporate listing (상장법인목록)
// ⭐ SSOT: KRX 종목 목록 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	listingURL string
}

// NewClient creates a new KRX KIND client
func NewClient(httpClient *httputil.Client, listingURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		listingURL: listingURL,
	}
}
