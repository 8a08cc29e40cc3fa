package numeric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxFractionDigits bounds decimal input so 10^n fits in int64 with room
// for the integer part.
const maxFractionDigits = 9

// ErrEmpty is returned when ParseRat receives blank input.
var ErrEmpty = errors.New("empty number")

// ParseRat parses an integer ("-7"), a decimal ("2.5", "2,5") or a fraction
// ("5/2") into an exact rational. No floating point is involved.
func ParseRat(s string) (Rat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rat{}, ErrEmpty
	}
	if strings.Contains(s, "/") {
		return parseFraction(s)
	}
	return parseDecimal(strings.Replace(s, ",", ".", 1))
}

// parseFraction parses "a/b" into a reduced rational.
func parseFraction(s string) (Rat, error) {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Rat{}, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Rat{}, fmt.Errorf("invalid denominator: %w", err)
	}
	return NewRat(num, den)
}

func parseDecimal(s string) (Rat, error) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart, fracPart, hasPoint := strings.Cut(s, ".")
	if intPart == "" && (!hasPoint || fracPart == "") {
		return Rat{}, fmt.Errorf("invalid number %q", s)
	}
	if len(fracPart) > maxFractionDigits {
		return Rat{}, fmt.Errorf("too many decimal places in %q", s)
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Rat{}, fmt.Errorf("invalid number %q", s)
	}

	var whole int64
	if intPart != "" {
		n, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return Rat{}, fmt.Errorf("invalid integer part: %w", err)
		}
		whole = n
	}

	den := int64(1)
	var frac int64
	for _, c := range fracPart {
		den *= 10
		frac = frac*10 + int64(c-'0')
	}

	if whole > (math.MaxInt64-frac)/den {
		return Rat{}, fmt.Errorf("number %q out of range", s)
	}
	num := whole*den + frac
	if neg {
		num = -num
	}
	return reduce(num, den), nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
