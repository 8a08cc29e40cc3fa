package taskgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/mathgym/internal/numeric"
)

// generateFraction builds a/b + c/d with numerators in [1,10] and
// denominators in [2,12].
func generateFraction(rng *rand.Rand) *Task {
	a := intIn(rng, 1, 10)
	b := intIn(rng, 2, 12)
	c := intIn(rng, 1, 10)
	d := intIn(rng, 2, 12)
	return NewFractionTask(a, b, c, d)
}

// NewFractionTask returns the task for a/b + c/d. The sum is computed
// exactly and then rounded to two decimals. The hint names b*d as the
// common denominator even when a smaller one exists.
func NewFractionTask(a, b, c, d int64) *Task {
	sum := numeric.MustRat(a, b).Add(numeric.MustRat(c, d))
	return &Task{
		Prompt:   fmt.Sprintf("Вычислите: %d/%d + %d/%d", a, b, c, d),
		Answer:   Approximate(sum.Round2()),
		Hint:     fmt.Sprintf("Общий знаменатель: %d", b*d),
		Category: CategoryFraction,
	}
}
