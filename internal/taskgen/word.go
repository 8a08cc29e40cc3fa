package taskgen

import (
	"fmt"
	"math/rand/v2"
)

// generateWord draws x pencils in [5,20] and y friends in [2,5].
func generateWord(rng *rand.Rand) *Task {
	x := intIn(rng, 5, 20)
	y := intIn(rng, 2, 5)
	return NewWordTask(x, y)
}

// NewWordTask returns the pencil problem: Petya has x pencils, each of his
// y friends has y times more. The total is x + x*y*y.
func NewWordTask(x, y int64) *Task {
	return &Task{
		Prompt:   fmt.Sprintf("У Пети %d карандашей. У каждого из %d друзей в %d раз больше. Сколько всего?", x, y, y),
		Answer:   ExactInt(x + x*y*y),
		Hint:     "Петя + друзья",
		Category: CategoryWord,
	}
}
