package ledger

import (
	"fmt"
	"strings"
)

// FormatAmount renders an amount with a currency prefix, thousands
// separators and two decimals, e.g. FormatAmount(1234.5, "KES") returns
// "KES 1,234.50". Negative amounts keep the sign ahead of the digits.
func FormatAmount(amount float64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(s, ".", 2)
	return fmt.Sprintf("%s %s%s.%s", currency, sign, groupThousands(parts[0]), parts[1])
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
