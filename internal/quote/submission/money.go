package submission

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Shortfall is how much the wallet is short of premium, rounded up to the kobo. Zero when the
// balance covers it.
func Shortfall(balance, premium decimal.Decimal) decimal.Decimal {
	if balance.GreaterThanOrEqual(premium) {
		return decimal.Zero
	}
	return premium.Sub(balance).RoundCeil(2)
}

// FormatNaira renders an amount with thousands separators and two decimals, e.g. "1,250.50".
func FormatNaira(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
