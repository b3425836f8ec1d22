package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DescribeTimeline renders a timeline such as "18 months (1 year 6 months, 10% long-term discount)".
func DescribeTimeline(months int, discount decimal.Decimal) string {
	var notes []string
	if months >= 12 {
		notes = append(notes, yearsAndMonths(months))
	}
	if discount.IsPositive() {
		pct := discount.Mul(decimal.NewFromInt(100))
		notes = append(notes, pct.String()+"% long-term discount")
	}

	desc := plural(months, "month")
	if len(notes) > 0 {
		desc += " (" + strings.Join(notes, ", ") + ")"
	}
	return desc
}

func yearsAndMonths(months int) string {
	s := plural(months/12, "year")
	if rest := months % 12; rest > 0 {
		s += " " + plural(rest, "month")
	}
	return s
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
