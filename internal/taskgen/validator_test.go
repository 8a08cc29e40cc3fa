package taskgen

import "testing"

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Validator: "test-validator",
		Message:   "something went wrong",
	}
	expected := `validator "test-validator": something went wrong`
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestDefaultConfig_ValidatorChain(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Validators) != 2 {
		t.Fatalf("expected 2 validators, got %d", len(cfg.Validators))
	}
	names := []string{"structural", "math-check"}
	for i, v := range cfg.Validators {
		if v.Name() != names[i] {
			t.Errorf("validator %d: expected %q, got %q", i, names[i], v.Name())
		}
	}
}

func TestDefaultConfig_Categories(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Categories) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(cfg.Categories))
	}
	for _, c := range cfg.Categories {
		if !c.Valid() {
			t.Errorf("category %q is not valid", c)
		}
		if c.DisplayName() == string(c) {
			t.Errorf("category %q has no display name", c)
		}
	}
}
