package taskgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/mathgym/internal/numeric"
)

// Operator is one of the four arithmetic operators used by signed tasks.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "×"
	OpDiv Operator = "÷"
)

var signedOperators = []Operator{OpAdd, OpSub, OpMul, OpDiv}

// generateSigned draws two negative operands in [-20,-1] and one operator.
func generateSigned(rng *rand.Rand) *Task {
	a := intIn(rng, -20, -1)
	b := intIn(rng, -20, -1)
	op := pick(rng, signedOperators)
	return NewSignedTask(a, op, b)
}

// NewSignedTask returns the task "(a) op (b)".
func NewSignedTask(a int64, op Operator, b int64) *Task {
	answer := evalSigned(a, op, b)
	return &Task{
		Prompt:   fmt.Sprintf("Вычислите: (%d) %s (%d)", a, op, b),
		Answer:   answer,
		Hint:     fmt.Sprintf("%d %s %d = %s", a, op, b, answer),
		Category: CategorySigned,
	}
}

// evalSigned is exact for +, - and ×. Division is rounded to two decimals;
// a zero divisor yields 0. Operand ranges never produce b == 0, the branch
// lives in numeric.DivRound2.
func evalSigned(a int64, op Operator, b int64) Answer {
	switch op {
	case OpAdd:
		return ExactInt(a + b)
	case OpSub:
		return ExactInt(a - b)
	case OpMul:
		return ExactInt(a * b)
	default:
		return Approximate(numeric.DivRound2(a, b))
	}
}
