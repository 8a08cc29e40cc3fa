package taskgen

import "unicode/utf8"

// StructuralValidator checks that required fields are present, within
// length limits, and that the answer kind fits the category.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(t *Task) *ValidationError {
	if t.Prompt == "" {
		return v.fail("prompt is empty")
	}
	if utf8.RuneCountInString(t.Prompt) > 500 {
		return v.fail("prompt exceeds 500 characters")
	}
	if t.Hint == "" {
		return v.fail("hint is empty")
	}
	if !t.Category.Valid() {
		return v.fail("unknown category " + string(t.Category))
	}

	kind := t.Answer.Kind()
	switch t.Category {
	case CategoryFraction:
		if kind != KindApproximate {
			return v.fail("fraction answers must be approximate")
		}
	case CategorySigned:
		if kind != KindExact && kind != KindApproximate {
			return v.fail("answer kind is not set")
		}
	default:
		if kind != KindExact {
			return v.fail(string(t.Category) + " answers must be exact")
		}
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg}
}
