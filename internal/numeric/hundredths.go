package numeric

import (
	"fmt"
	"strconv"
)

// Hundredths is a decimal value with exactly two fractional digits, stored
// as an integer count of hundredths (1.25 is Hundredths(125)).
type Hundredths int64

// Float64 returns h as a float64 for JSON output.
func (h Hundredths) Float64() float64 {
	return float64(h) / 100
}

// Rat returns the exact rational value of h.
func (h Hundredths) Rat() Rat {
	return reduce(int64(h), 100)
}

// String always prints two decimals: "1.00", "-0.13".
func (h Hundredths) String() string {
	v := int64(h)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + strconv.FormatInt(v/100, 10) + "." + fmt.Sprintf("%02d", v%100)
}
