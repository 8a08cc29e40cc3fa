// Package numeric provides the exact arithmetic used to build and grade tasks:
// an int64 rational type and a two-decimal fixed-point type.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ErrZeroDenominator is returned when a rational is built with a zero denominator.
var ErrZeroDenominator = errors.New("zero denominator")

// Rat is an exact rational number. It is always held in lowest terms with a
// positive denominator. The zero value is 0.
type Rat struct {
	num int64
	den int64
}

// Int returns the rational n/1.
func Int(n int64) Rat {
	return Rat{num: n, den: 1}
}

// NewRat returns num/den reduced to lowest terms.
func NewRat(num, den int64) (Rat, error) {
	if den == 0 {
		return Rat{}, ErrZeroDenominator
	}
	return reduce(num, den), nil
}

// MustRat is like NewRat but panics on a zero denominator.
// Intended for operands drawn from ranges that exclude zero.
func MustRat(num, den int64) Rat {
	r, err := NewRat(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

// Num returns the numerator in lowest terms.
func (r Rat) Num() int64 { return r.num }

// Den returns the positive denominator in lowest terms.
func (r Rat) Den() int64 {
	if r.den == 0 {
		return 1
	}
	return r.den
}

// Add returns r + o.
func (r Rat) Add(o Rat) Rat {
	return reduce(r.num*o.Den()+o.num*r.Den(), r.Den()*o.Den())
}

// Sub returns r - o.
func (r Rat) Sub(o Rat) Rat {
	return reduce(r.num*o.Den()-o.num*r.Den(), r.Den()*o.Den())
}

// Mul returns r * o.
func (r Rat) Mul(o Rat) Rat {
	return reduce(r.num*o.num, r.Den()*o.Den())
}

// Quo returns r / o, or ErrZeroDenominator when o is zero.
func (r Rat) Quo(o Rat) (Rat, error) {
	if o.num == 0 {
		return Rat{}, ErrZeroDenominator
	}
	return reduce(r.num*o.Den(), r.Den()*o.num), nil
}

// Equal reports whether r and o are the same number.
func (r Rat) Equal(o Rat) bool {
	return r.num == o.num && r.Den() == o.Den()
}

// IsInt reports whether r has no fractional part.
func (r Rat) IsInt() bool {
	return r.Den() == 1
}

// Float64 returns the nearest float64. Display only; never compare with it.
func (r Rat) Float64() float64 {
	return float64(r.num) / float64(r.Den())
}

// String formats r as "7", "-3" or "5/2".
func (r Rat) String() string {
	if r.IsInt() {
		return strconv.FormatInt(r.num, 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.Den())
}

// ErrOutOfRange is returned when a rounded value does not fit in Hundredths.
var ErrOutOfRange = errors.New("value out of range")

// Round2 rounds r to two decimal places, halves away from zero. Values
// outside the Hundredths range saturate; use TryRound2 to detect that.
func (r Rat) Round2() Hundredths {
	h, err := r.TryRound2()
	if err != nil {
		if r.num < 0 {
			return Hundredths(math.MinInt64)
		}
		return Hundredths(math.MaxInt64)
	}
	return h
}

// TryRound2 is Round2 that reports ErrOutOfRange instead of saturating.
func (r Rat) TryRound2() (Hundredths, error) {
	num := big.NewInt(r.num)
	den := big.NewInt(r.Den())
	neg := num.Sign() < 0
	num.Abs(num)

	// floor((200*num + den) / (2*den))
	num.Mul(num, big.NewInt(200))
	num.Add(num, den)
	den.Lsh(den, 1)
	v := num.Quo(num, den)
	if neg {
		v.Neg(v)
	}
	if !v.IsInt64() {
		return 0, ErrOutOfRange
	}
	return Hundredths(v.Int64()), nil
}

// DivRound2 divides a by b and rounds the quotient to two decimal places.
// A zero divisor yields 0 instead of an error.
func DivRound2(a, b int64) Hundredths {
	if b == 0 {
		return 0
	}
	return reduce(a, b).Round2()
}

func reduce(num, den int64) Rat {
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs(num), den); g > 1 {
		num /= g
		den /= g
	}
	return Rat{num: num, den: den}
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
