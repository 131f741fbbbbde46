package ledger

import (
	"github.com/shopspring/decimal"
	"papersim/internal/services/numfmt"
)

func formatUSD(v decimal.Decimal) string {
	return "$" + numfmt.FormatPrice(v.InexactFloat64())
}

func formatQty(v decimal.Decimal) string {
	return numfmt.FormatAmount(v.InexactFloat64())
}
