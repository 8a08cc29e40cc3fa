package taskgen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/abhisek/mathgym/internal/numeric"
)

// MathCheckValidator independently recomputes the answer from the operands
// written in the prompt and rejects tasks whose stored answer disagrees.
type MathCheckValidator struct{}

func (v *MathCheckValidator) Name() string { return "math-check" }

func (v *MathCheckValidator) Validate(t *Task) *ValidationError {
	computed, err := Recompute(t.Category, t.Prompt)
	if err != nil {
		return &ValidationError{
			Validator: v.Name(),
			Message:   err.Error(),
		}
	}
	if !computed.Equal(t.Answer) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("computed %s (%s) but task claims %s (%s)", computed, computed.Kind(), t.Answer, t.Answer.Kind()),
		}
	}
	return nil
}

var errNoMatch = errors.New("prompt does not match the category template")

// Regex patterns for extracting operands from prompt text.
var (
	equationRe   = regexp.MustCompile(`(\d+)x \+ (\d+) = (\d+)`)
	fractionRe   = regexp.MustCompile(`(\d+)/(\d+) \+ (\d+)/(\d+)`)
	percentageRe = regexp.MustCompile(`(\d+)% от (\d+)`)
	signedRe     = regexp.MustCompile(`\((-?\d+)\) ([+\-×÷*/]) \((-?\d+)\)`)
	geometryRe   = regexp.MustCompile(`стороной (\d+) см`)
	wordRe       = regexp.MustCompile(`У Пети (\d+) карандашей\. У каждого из (\d+) друзей в (\d+) раз`)
)

// Recompute parses the operands out of a prompt of the given category and
// evaluates the category formula on them.
func Recompute(category Category, prompt string) (Answer, error) {
	switch category {
	case CategoryEquation:
		n, err := operands(equationRe, prompt)
		if err != nil {
			return Answer{}, err
		}
		root, err := numeric.NewRat(n[2]-n[1], n[0])
		if err != nil {
			return Answer{}, err
		}
		return Exact(root), nil

	case CategoryFraction:
		n, err := operands(fractionRe, prompt)
		if err != nil {
			return Answer{}, err
		}
		left, err := numeric.NewRat(n[0], n[1])
		if err != nil {
			return Answer{}, err
		}
		right, err := numeric.NewRat(n[2], n[3])
		if err != nil {
			return Answer{}, err
		}
		return Approximate(left.Add(right).Round2()), nil

	case CategoryPercentage:
		n, err := operands(percentageRe, prompt)
		if err != nil {
			return Answer{}, err
		}
		return Exact(numeric.Int(n[1]).Mul(numeric.MustRat(n[0], 100))), nil

	case CategorySigned:
		m := signedRe.FindStringSubmatch(prompt)
		if m == nil {
			return Answer{}, errNoMatch
		}
		a, _ := strconv.ParseInt(m[1], 10, 64)
		b, _ := strconv.ParseInt(m[3], 10, 64)
		return evalSigned(a, normalizeOp(m[2]), b), nil

	case CategoryGeometry:
		n, err := operands(geometryRe, prompt)
		if err != nil {
			return Answer{}, err
		}
		return ExactInt(n[0] * n[0]), nil

	case CategoryWord:
		n, err := operands(wordRe, prompt)
		if err != nil {
			return Answer{}, err
		}
		if n[1] != n[2] {
			return Answer{}, fmt.Errorf("friend count %d and multiplier %d differ", n[1], n[2])
		}
		return ExactInt(n[0] + n[0]*n[1]*n[1]), nil

	default:
		return Answer{}, fmt.Errorf("unknown category %q", category)
	}
}

// operands extracts all integer capture groups of re from text.
func operands(re *regexp.Regexp, text string) ([]int64, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, errNoMatch
	}
	out := make([]int64, 0, len(m)-1)
	for _, s := range m[1:] {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("operand %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// normalizeOp maps ASCII operator spellings onto the display operators.
func normalizeOp(op string) Operator {
	switch op {
	case "*":
		return OpMul
	case "/":
		return OpDiv
	default:
		return Operator(op)
	}
}
