package taskgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/mathgym/internal/numeric"
)

// generateEquation builds a linear equation ax + b = c with a in [2,10],
// b in [1,15] and c in [10,50].
func generateEquation(rng *rand.Rand) *Task {
	a := intIn(rng, 2, 10)
	b := intIn(rng, 1, 15)
	c := intIn(rng, 10, 50)
	return NewEquationTask(a, b, c)
}

// NewEquationTask returns the task for ax + b = c. The root (c-b)/a is kept
// as an exact rational. a must be non-zero.
func NewEquationTask(a, b, c int64) *Task {
	return &Task{
		Prompt:   fmt.Sprintf("Решите уравнение: %dx + %d = %d", a, b, c),
		Answer:   Exact(numeric.MustRat(c-b, a)),
		Hint:     fmt.Sprintf("x = (%d - %d) / %d", c, b, a),
		Category: CategoryEquation,
	}
}
