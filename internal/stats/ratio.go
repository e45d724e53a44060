package stats

import (
	"math"
	"strconv"
)

// Ratio is a metric value whose denominator may be zero. A player who never
// faced a raise has no 3-bet rate at all, which is different from a 3-bet
// rate of zero; OK distinguishes the two.
type Ratio struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// NA is the undefined-denominator sentinel.
func NA() Ratio { return Ratio{} }

// Percent builds a percentage rounded to one decimal, or n/a when the
// denominator is zero.
func Percent(count, total int) Ratio {
	if total == 0 {
		return NA()
	}
	return Ratio{Value: round1(float64(count) / float64(total) * 100), OK: true}
}

// Quotient builds a plain ratio rounded to one decimal, or n/a when the
// denominator is zero.
func Quotient(num float64, den float64) Ratio {
	if den == 0 {
		return NA()
	}
	return Ratio{Value: round1(num / den), OK: true}
}

// String renders the value to one decimal, or the literal "n/a".
func (r Ratio) String() string {
	if !r.OK {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', 1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
