package contracts

import "fmt"

// Market is a KRX market segment
type Market string

const (
	MarketKOSPI  Market = "KOSPI"  // 유가증권시장
	MarketKOSDAQ Market = "KOSDAQ" // 코스닥
	MarketKONEX  Market = "KONEX"  // 코넥스
)

// Suffix returns the ticker suffix used by global quote providers
func (m Market) Suffix() string {
	switch m {
	case MarketKOSPI:
		return ".KS"
	case MarketKOSDAQ:
		return ".KQ"
	case MarketKONEX:
		return ".KN"
	default:
		return ""
	}
}

// Entity is a tracked company (종목)
// ⭐ SSOT: 종목 식별 정보는 여기서만 정의
type Entity struct {
	Name   string `json:"name"`
	Code   string `json:"code"`   // 6자리 종목코드
	Symbol string `json:"symbol"` // 종목코드 + 시장 접미사 (005930.KS)
	Market Market `json:"market"`
}

// NewEntity builds an Entity and derives its market-suffixed symbol
func NewEntity(name, code string, market Market) Entity {
	return Entity{
		Name:   name,
		Code:   code,
		Symbol: code + market.Suffix(),
		Market: market,
	}
}

// Label is the report label, e.g. "삼성전자(005930)"
func (e Entity) Label() string {
	return fmt.Sprintf("%s(%s)", e.Name, e.Code)
}
