package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money is a decimal currency amount. Arithmetic is exact; rounding to two
// places happens only in Format.
type Money = decimal.Decimal

// Zero is the zero amount.
var Zero = decimal.Zero

// Clock supplies the evaluation instant for discount windows.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now implements Clock.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Format renders an amount for display with two decimals and thousands
// separators, prefixed by the currency symbol.
func Format(amount Money, symbol string) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + symbol + b.String() + "." + frac
}

func clampZero(m Money) Money {
	if m.IsNegative() {
		return Zero
	}
	return m
}
