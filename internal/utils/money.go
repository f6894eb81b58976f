package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RoundMoney keeps major-unit amounts at two decimals.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ToMinorUnits converts a major-unit amount (e.g. rupees) to the gateway's minor units (paise).
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) float64 {
	return RoundMoney(float64(minor) / 100)
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatAmount renders an amount with thousand separators and a currency prefix.
func FormatAmount(currency string, amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	minor := ToMinorUnits(amount)
	whole := minor / 100
	cents := minor % 100
	return fmt.Sprintf("%s%s %s.%02d", sign, strings.ToUpper(currency), formatThousand(whole), cents)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
