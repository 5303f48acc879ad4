package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
)

// ProviderName identifies Yahoo in cache keys and logs
const ProviderName = "yahoo"

var kst = time.FixedZone("KST", 9*60*60)

// Client fetches daily quotes from the Yahoo Finance v8 chart endpoint
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	chartURL   string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, chartURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		chartURL:   chartURL,
	}
}

// chartResponse is the v8 chart payload; missing bars are null
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Name implements contracts.QuoteProvider
func (c *Client) Name() string {
	return ProviderName
}

// Fetch fetches daily quotes of one entity keyed by its market-suffixed symbol
func (c *Client) Fetch(ctx context.Context, entity contracts.Entity, from, to time.Time) ([]contracts.PriceObservation, error) {
	params := url.Values{
		"period1":  {strconv.FormatInt(from.Unix(), 10)},
		"period2":  {strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10)},
		"interval": {"1d"},
		"events":   {"history"},
	}
	fullURL := fmt.Sprintf("%s/%s?%s", c.chartURL, url.PathEscape(entity.Symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", httputil.DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", entity.Symbol, err)
	}

	prices, err := parseChart(body, entity.Code)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", entity.Symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": entity.Symbol,
		"count":  len(prices),
	}).Debug("Fetched prices")

	return prices, nil
}

func parseChart(body []byte, code string) ([]contracts.PriceObservation, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	prices := make([]contracts.PriceObservation, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := at(quote.Close, i)
		if closePrice == nil {
			continue // 거래 없는 날
		}

		local := time.Unix(ts, 0).In(kst)
		obs := contracts.PriceObservation{
			Code:  code,
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closePrice,
		}
		if v := at(quote.Open, i); v != nil {
			obs.Open = *v
		}
		if v := at(quote.High, i); v != nil {
			obs.High = *v
		}
		if v := at(quote.Low, i); v != nil {
			obs.Low = *v
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			obs.Volume = *quote.Volume[i]
		}
		prices = append(prices, obs)
	}

	return prices, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
