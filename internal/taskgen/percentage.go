package taskgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/mathgym/internal/numeric"
)

var percentChoices = []int64{10, 15, 20, 25, 30, 40, 50}

func generatePercentage(rng *rand.Rand) *Task {
	total := intIn(rng, 50, 200)
	percent := pick(rng, percentChoices)
	return NewPercentageTask(total, percent)
}

// NewPercentageTask returns the task "percent% of total". The answer may be
// fractional (15% of 55 is 33/4) and stays exact.
func NewPercentageTask(total, percent int64) *Task {
	return &Task{
		Prompt:   fmt.Sprintf("Найдите %d%% от %d", percent, total),
		Answer:   Exact(numeric.MustRat(total*percent, 100)),
		Hint:     fmt.Sprintf("(%d/100) × %d", percent, total),
		Category: CategoryPercentage,
	}
}
