package taskgen

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatcher_NoGenerators(t *testing.T) {
	_, err := NewDispatcher(NewRand(1), Config{})
	if !errors.Is(err, ErrNoGenerators) {
		t.Fatalf("expected ErrNoGenerators, got %v", err)
	}
}

func TestNewDispatcher_UnknownCategory(t *testing.T) {
	_, err := NewDispatcher(NewRand(1), Config{Categories: []Category{"calculus"}})
	require.Error(t, err)
}

func TestNewDispatcher_NilRand(t *testing.T) {
	_, err := NewDispatcher(nil, DefaultConfig())
	require.Error(t, err)
}

func TestDispatcher_Deterministic(t *testing.T) {
	d1, err := NewDispatcher(NewRand(42), DefaultConfig())
	require.NoError(t, err)
	d2, err := NewDispatcher(NewRand(42), DefaultConfig())
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		a, err := d1.Next()
		require.NoError(t, err)
		b, err := d2.Next()
		require.NoError(t, err)
		assert.Equal(t, a.Prompt, b.Prompt)
		assert.Equal(t, a.Hint, b.Hint)
		assert.Equal(t, a.Category, b.Category)
		assert.True(t, a.Answer.Equal(b.Answer))
	}
}

func TestDispatcher_DifferentSeedsDiffer(t *testing.T) {
	d1, _ := NewDispatcher(NewRand(1), DefaultConfig())
	d2, _ := NewDispatcher(NewRand(2), DefaultConfig())

	same := 0
	for i := 0; i < 50; i++ {
		a, _ := d1.Next()
		b, _ := d2.Next()
		if a.Prompt == b.Prompt {
			same++
		}
	}
	assert.Less(t, same, 50)
}

func TestDispatcher_UniformCategories(t *testing.T) {
	d, err := NewDispatcher(NewRand(2024), DefaultConfig())
	require.NoError(t, err)

	const n = 10000
	counts := map[Category]int{}
	for i := 0; i < n; i++ {
		task, err := d.Next()
		require.NoError(t, err)
		counts[task.Category]++
	}

	require.Len(t, counts, 6)
	expected := float64(n) / 6
	var chi2 float64
	for _, c := range AllCategories() {
		diff := float64(counts[c]) - expected
		chi2 += diff * diff / expected
	}
	// Critical value for 5 degrees of freedom at p = 0.001.
	assert.Less(t, chi2, 20.515, "category counts %v", counts)
}

func TestDispatcher_RepeatsAreAllowed(t *testing.T) {
	d, err := NewDispatcher(NewRand(5), DefaultConfig())
	require.NoError(t, err)

	prev := Category("")
	repeats := 0
	for i := 0; i < 600; i++ {
		task, err := d.Next()
		require.NoError(t, err)
		if task.Category == prev {
			repeats++
		}
		prev = task.Category
	}
	// Roughly one draw in six repeats the previous category.
	assert.Greater(t, repeats, 0)
}

func TestDispatcher_SubsetOfCategories(t *testing.T) {
	d, err := NewDispatcher(NewRand(9), Config{
		Categories: []Category{CategoryGeometry, CategoryWord},
		Validators: DefaultConfig().Validators,
	})
	require.NoError(t, err)
	assert.Equal(t, []Category{CategoryGeometry, CategoryWord}, d.Categories())

	for i := 0; i < 100; i++ {
		task, err := d.Next()
		require.NoError(t, err)
		assert.Contains(t, []Category{CategoryGeometry, CategoryWord}, task.Category)
	}
}

func TestDispatcher_NextOf(t *testing.T) {
	d, err := NewDispatcher(NewRand(9), DefaultConfig())
	require.NoError(t, err)

	task, err := d.NextOf(CategoryFraction)
	require.NoError(t, err)
	assert.Equal(t, CategoryFraction, task.Category)

	_, err = d.NextOf("calculus")
	assert.Error(t, err)
}

type rejectAll struct{}

func (rejectAll) Name() string { return "reject" }
func (rejectAll) Validate(*Task) *ValidationError {
	return &ValidationError{Validator: "reject", Message: "no"}
}

func TestDispatcher_ValidatorFailure(t *testing.T) {
	d, err := NewDispatcher(NewRand(1), Config{
		Categories: AllCategories(),
		Validators: []Validator{rejectAll{}},
	})
	require.NoError(t, err)

	_, err = d.Next()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reject", verr.Validator)
}

func TestDispatcher_ConcurrentUse(t *testing.T) {
	d, err := NewDispatcher(NewRand(77), DefaultConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8*250)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				if _, err := d.Next(); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
