package anthrocheck

import "github.com/shopspring/decimal"

// FormatValue renders v rounded to places decimals without trailing
// zeros, e.g. FormatValue(9.259, 1) == "9.3" and FormatValue(180, 1) ==
// "180".
func FormatValue(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

// FormatFixed renders v with exactly places decimals, e.g.
// FormatFixed(0.5, 2) == "0.50".
func FormatFixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
