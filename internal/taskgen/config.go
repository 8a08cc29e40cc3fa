package taskgen

// Config controls the behavior of the Dispatcher.
type Config struct {
	// Categories lists the enabled generators. Each call picks one of
	// them with equal probability. Empty means no generator is
	// registered, which NewDispatcher rejects.
	Categories []Category

	// Validators is the ordered list of validators to run on every
	// generated task. They execute in order; the first failure
	// stops the pipeline.
	Validators []Validator
}

// DefaultConfig returns a Config with all six categories and the standard
// validator chain.
func DefaultConfig() Config {
	return Config{
		Categories: AllCategories(),
		Validators: []Validator{
			&StructuralValidator{},
			&MathCheckValidator{},
		},
	}
}
