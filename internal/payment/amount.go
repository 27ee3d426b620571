package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to cents, rounding half to even.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).RoundBank(0).IntPart()
}

func FromMinorUnits(minor int64) float64 {
	return decimal.New(minor, -2).InexactFloat64()
}

// FormatAmount renders amount with exactly two decimals.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixedBank(2)
}

// ParseAmount reads a provider decimal string. Empty or malformed values
// parse as zero.
func ParseAmount(value string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0
	}

	return d.InexactFloat64()
}
