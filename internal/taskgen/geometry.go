package taskgen

import (
	"fmt"
	"math/rand/v2"
)

func generateGeometry(rng *rand.Rand) *Task {
	return NewGeometryTask(intIn(rng, 5, 15))
}

// NewGeometryTask returns the area of a square with the given side.
func NewGeometryTask(side int64) *Task {
	return &Task{
		Prompt:   fmt.Sprintf("Найдите площадь квадрата со стороной %d см", side),
		Answer:   ExactInt(side * side),
		Hint:     "Площадь = сторона²",
		Category: CategoryGeometry,
	}
}
