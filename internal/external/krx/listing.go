package krx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/httputil"
)

// marketTypes maps a market segment to the KIND marketType parameter
var marketTypes = map[contracts.Market]string{
	contracts.MarketKOSPI:  "stockMkt",
	contracts.MarketKOSDAQ: "kosdaqMkt",
	contracts.MarketKONEX:  "konexMkt",
}

// List downloads the listed companies of a market segment
// ⭐ SSOT: 시장별 상장 종목 목록은 이 함수에서만
func (c *Client) List(ctx context.Context, market contracts.Market) ([]contracts.Entity, error) {
	marketType, ok := marketTypes[market]
	if !ok {
		return nil, fmt.Errorf("unsupported market: %s", market)
	}

	params := url.Values{
		"method":     {"download"},
		"searchType": {"13"},
		"marketType": {marketType},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// KIND는 브라우저 헤더가 없으면 차단
	req.Header.Set("User-Agent", httputil.DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Referer", "http://kind.krx.co.kr/corpgeneral/corpList.do?method=loadInitPage")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KIND request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KIND returned status %d", resp.StatusCode)
	}

	entities, err := parseListing(resp.Body, resp.Header.Get("Content-Type"), market)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"market": market,
		"count":  len(entities),
	}).Info("Fetched listing from KIND")

	return entities, nil
}

// parseListing reads the KIND HTML table (EUC-KR) and extracts 회사명/종목코드
func parseListing(body io.Reader, contentType string, market contracts.Market) ([]contracts.Entity, error) {
	reader, err := charset.NewReader(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	nameCol, codeCol := -1, -1
	doc.Find("tr").First().Find("th,td").Each(func(i int, cell *goquery.Selection) {
		switch strings.TrimSpace(cell.Text()) {
		case "회사명":
			nameCol = i
		case "종목코드":
			codeCol = i
		}
	})
	if nameCol < 0 || codeCol < 0 {
		return nil, fmt.Errorf("listing header not found")
	}

	var entities []contracts.Entity
	seen := make(map[string]bool)

	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cells := row.Find("td")
		if cells.Length() <= nameCol || cells.Length() <= codeCol {
			return
		}

		name := strings.TrimSpace(cells.Eq(nameCol).Text())
		code := normalizeCode(cells.Eq(codeCol).Text())
		if name == "" || code == "" || seen[code] {
			return
		}
		seen[code] = true

		entities = append(entities, contracts.NewEntity(name, code, market))
	})

	return entities, nil
}

// normalizeCode left-pads numeric codes to 6 digits (엑셀 변환 시 앞자리 0 손실)
func normalizeCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	if len(code) < 6 {
		code = strings.Repeat("0", 6-len(code)) + code
	}
	return code
}
