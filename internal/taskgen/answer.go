package taskgen

import (
	"errors"
	"fmt"

	"github.com/abhisek/mathgym/internal/numeric"
)

// ErrMalformedAnswer is returned when a submission is not a number.
var ErrMalformedAnswer = errors.New("malformed answer")

// ErrUnknownKind is returned by ParseAnswer for an unrecognised kind.
var ErrUnknownKind = errors.New("unknown answer kind")

// Verify compares the learner's input against the expected answer.
//
// Input may be an integer ("7"), a decimal ("2.5" or "2,5") or a fraction
// ("5/2"); it is parsed exactly, never through a float.
//   - Exact answers match on exact rational equality, so "2.5", "5/2" and
//     "10/4" all match 5/2.
//   - Approximate answers match when the input, rounded to two decimals
//     with the rounding used at generation, equals the stored value.
//
// A non-numeric input returns ErrMalformedAnswer. A number too large to
// round into the stored range is simply wrong.
func Verify(input string, want Answer) (bool, error) {
	got, err := numeric.ParseRat(input)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}

	switch want.kind {
	case KindExact:
		return got.Equal(want.exact), nil
	case KindApproximate:
		h, err := got.TryRound2()
		if err != nil {
			return false, nil
		}
		return h == want.approx, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, want.kind)
	}
}

// CheckAnswer is Verify for callers that treat malformed input as wrong.
func CheckAnswer(input string, want Answer) bool {
	ok, err := Verify(input, want)
	return err == nil && ok
}

// ParseAnswer rebuilds an expected answer from its canonical string form
// (Answer.String) and kind, e.g. when a stateless client echoes it back.
func ParseAnswer(kind AnswerKind, s string) (Answer, error) {
	r, err := numeric.ParseRat(s)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	switch kind {
	case KindExact:
		return Exact(r), nil
	case KindApproximate:
		h, err := r.TryRound2()
		if err != nil {
			return Answer{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
		}
		return Approximate(h), nil
	default:
		return Answer{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
