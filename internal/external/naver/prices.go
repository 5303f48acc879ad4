package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/httputil"
)

var priceRowPattern = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*(\d+)`)

// Fetch fetches daily quotes of one entity from the fchart siseJson endpoint
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
func (c *Client) Fetch(ctx context.Context, entity contracts.Entity, from, to time.Time) ([]contracts.PriceObservation, error) {
	params := url.Values{
		"symbol":      {entity.Code},
		"requestType": {"1"},
		"startTime":   {from.Format("20060102")},
		"endTime":     {to.Format("20060102")},
		"timeframe":   {"day"},
	}
	fullURL := c.chartURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", httputil.DefaultUserAgent)
	req.Header.Set("Referer", "https://finance.naver.com/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("naver chart %s: %w", entity.Code, err)
	}

	prices := parsePriceResponse(string(body))
	for i := range prices {
		prices[i].Code = entity.Code
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": entity.Code,
		"count":      len(prices),
	}).Debug("Fetched prices")

	return prices, nil
}

// parsePriceResponse parses the fchart body: a JS array literal with a header row
func parsePriceResponse(body string) []contracts.PriceObservation {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData)
	}

	// 후행 쉼표 등으로 JSON이 깨진 경우
	return parsePriceRegex(body)
}

func parsePriceJSON(rawData [][]interface{}) []contracts.PriceObservation {
	var prices []contracts.PriceObservation
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		tradeDate, err := time.Parse("20060102", strings.TrimSpace(dateStr))
		if err != nil {
			continue
		}

		prices = append(prices, contracts.PriceObservation{
			Date:   tradeDate,
			Open:   toFloat(row[1]),
			High:   toFloat(row[2]),
			Low:    toFloat(row[3]),
			Close:  toFloat(row[4]),
			Volume: int64(toFloat(row[5])),
		})
	}
	return prices
}

func parsePriceRegex(body string) []contracts.PriceObservation {
	var prices []contracts.PriceObservation
	for _, match := range priceRowPattern.FindAllStringSubmatch(body, -1) {
		tradeDate, err := time.Parse("20060102", match[1])
		if err != nil {
			continue
		}

		volume, _ := strconv.ParseInt(match[6], 10, 64)
		prices = append(prices, contracts.PriceObservation{
			Date:   tradeDate,
			Open:   toFloat(match[2]),
			High:   toFloat(match[3]),
			Low:    toFloat(match[4]),
			Close:  toFloat(match[5]),
			Volume: volume,
		})
	}
	return prices
}

// toFloat converts JSON numbers and numeric strings
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return n
	default:
		return 0
	}
}
