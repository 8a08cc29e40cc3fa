package taskgen

import "github.com/abhisek/mathgym/internal/numeric"

// Task is one generated problem: the prompt shown to the learner, the
// expected answer used for grading, and an advisory hint.
type Task struct {
	// Prompt is the problem statement with the operands substituted,
	// e.g. "Найдите 20% от 100".
	Prompt string

	// Answer is the expected answer. Its kind decides how submissions
	// are compared (see Verify).
	Answer Answer

	// Hint describes the solution method. Never compared.
	Hint string

	// Category identifies the generator that produced the task.
	Category Category
}

// Category identifies one of the problem generators.
type Category string

const (
	CategoryEquation   Category = "equation"
	CategoryFraction   Category = "fraction"
	CategoryPercentage Category = "percentage"
	CategorySigned     Category = "signed"
	CategoryGeometry   Category = "geometry"
	CategoryWord       Category = "word"
)

// AllCategories returns every category in dispatch-table order.
func AllCategories() []Category {
	return []Category{
		CategoryEquation,
		CategoryFraction,
		CategoryPercentage,
		CategorySigned,
		CategoryGeometry,
		CategoryWord,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range AllCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable label for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryEquation:
		return "Уравнения"
	case CategoryFraction:
		return "Дроби"
	case CategoryPercentage:
		return "Проценты"
	case CategorySigned:
		return "Отрицательные числа"
	case CategoryGeometry:
		return "Геометрия"
	case CategoryWord:
		return "Логика"
	default:
		return string(c)
	}
}

// AnswerKind tells the grader how to compare a submission.
type AnswerKind string

const (
	// KindExact answers are integers or exact rationals, compared exactly.
	KindExact AnswerKind = "exact"

	// KindApproximate answers are rounded to two decimals at generation
	// time; submissions are rounded the same way before comparing.
	KindApproximate AnswerKind = "approximate"
)

// Answer is the expected answer of a task. Exactly one of the exact or
// approximate values is meaningful, selected by Kind.
type Answer struct {
	kind   AnswerKind
	exact  numeric.Rat
	approx numeric.Hundredths
}

// Exact builds an exact answer.
func Exact(r numeric.Rat) Answer {
	return Answer{kind: KindExact, exact: r}
}

// ExactInt builds an exact integer answer.
func ExactInt(n int64) Answer {
	return Exact(numeric.Int(n))
}

// Approximate builds an answer already rounded to two decimals.
func Approximate(h numeric.Hundredths) Answer {
	return Answer{kind: KindApproximate, approx: h}
}

// Kind returns the comparison kind.
func (a Answer) Kind() AnswerKind { return a.kind }

// ExactValue returns the exact value and true for exact answers.
func (a Answer) ExactValue() (numeric.Rat, bool) {
	return a.exact, a.kind == KindExact
}

// ApproxValue returns the rounded value and true for approximate answers.
func (a Answer) ApproxValue() (numeric.Hundredths, bool) {
	return a.approx, a.kind == KindApproximate
}

// Float64 returns the answer as a float for JSON payloads.
func (a Answer) Float64() float64 {
	if a.kind == KindApproximate {
		return a.approx.Float64()
	}
	return a.exact.Float64()
}

// String returns the canonical form: "5/2", "49" or "0.63".
func (a Answer) String() string {
	if a.kind == KindApproximate {
		return a.approx.String()
	}
	return a.exact.String()
}

// Equal reports whether a and b have the same kind and value.
func (a Answer) Equal(b Answer) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindApproximate {
		return a.approx == b.approx
	}
	return a.exact.Equal(b.exact)
}
