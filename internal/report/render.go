package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/propopol/internal/contracts"
)

const (
	tableHeader = "|   corp   |   current_price   |   prediction_price   |   expected_profit   |\n"
	tableAlign  = "|:--------:|:-----------------:|:--------------------:|:-------------------:|\n"
)

// Render builds the markdown published to every channel
// ⭐ SSOT: 리포트 포맷은 여기서만
func Render(r *contracts.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	b.WriteString(tableHeader)
	b.WriteString(tableAlign)

	for _, e := range r.Entries {
		fmt.Fprintf(&b, "|%s|%s|%s|%s|\n",
			e.Label,
			FormatPrice(e.CurrentPrice),
			FormatPrice(e.PredictedPrice),
			FormatPrice(e.ExpectedProfit),
		)
	}

	if r.Aborted {
		fmt.Fprintf(&b, "\n> time budget exceeded: %d of %d entities forecast\n",
			r.Processed, r.Eligible)
	}

	return b.String()
}

// FormatPrice rounds to two decimals without trailing zeros
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
