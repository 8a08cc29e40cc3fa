package taskgen

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// ErrNoGenerators is returned by NewDispatcher when no category is enabled.
var ErrNoGenerators = errors.New("no task generators registered")

// GenerateFunc produces one task from fresh operands drawn from rng.
type GenerateFunc func(rng *rand.Rand) *Task

// generators is the dispatch table, one entry per category.
var generators = map[Category]GenerateFunc{
	CategoryEquation:   generateEquation,
	CategoryFraction:   generateFraction,
	CategoryPercentage: generatePercentage,
	CategorySigned:     generateSigned,
	CategoryGeometry:   generateGeometry,
	CategoryWord:       generateWord,
}

// Generate produces one task of the given category.
func Generate(rng *rand.Rand, category Category) (*Task, error) {
	gen, ok := generators[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return gen(rng), nil
}

// Dispatcher hands out tasks from a uniformly chosen category. The choice
// is memoryless: every call is an independent draw, so repeats are normal.
//
// A Dispatcher is safe for concurrent use; calls are serialized on the
// underlying random source.
type Dispatcher struct {
	mu         sync.Mutex
	rng        *rand.Rand
	categories []Category
	validators []Validator
}

// NewDispatcher creates a Dispatcher drawing from rng.
func NewDispatcher(rng *rand.Rand, cfg Config) (*Dispatcher, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if len(cfg.Categories) == 0 {
		return nil, ErrNoGenerators
	}
	for _, c := range cfg.Categories {
		if _, ok := generators[c]; !ok {
			return nil, fmt.Errorf("unknown category %q", c)
		}
	}
	return &Dispatcher{
		rng:        rng,
		categories: append([]Category(nil), cfg.Categories...),
		validators: cfg.Validators,
	}, nil
}

// Categories returns the enabled categories in table order.
func (d *Dispatcher) Categories() []Category {
	return append([]Category(nil), d.categories...)
}

// Next returns a task from a uniformly chosen category.
// All configured validators are run before returning.
func (d *Dispatcher) Next() (*Task, error) {
	d.mu.Lock()
	category := d.categories[d.rng.IntN(len(d.categories))]
	t := generators[category](d.rng)
	d.mu.Unlock()

	for _, v := range d.validators {
		if verr := v.Validate(t); verr != nil {
			return nil, verr
		}
	}
	return t, nil
}

// NextOf returns a task of a specific category using the dispatcher's
// random source.
func (d *Dispatcher) NextOf(category Category) (*Task, error) {
	d.mu.Lock()
	t, err := Generate(d.rng, category)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, v := range d.validators {
		if verr := v.Validate(t); verr != nil {
			return nil, verr
		}
	}
	return t, nil
}
