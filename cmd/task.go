package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathgym/internal/taskgen"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Print generated tasks with their answers (no database)",
	RunE:  runTask,
}

func init() {
	taskCmd.Flags().IntP("count", "n", 5, "Number of tasks to generate")
	taskCmd.Flags().Uint64("seed", 0, "Random seed for a reproducible sequence (0 picks one)")
	taskCmd.Flags().String("category", "", "Restrict to one category (equation, fraction, percentage, signed, geometry, word)")
	taskCmd.Flags().Bool("json", false, "Emit one JSON object per line")
}

// taskLine is the --json output shape.
type taskLine struct {
	Task     string `json:"task"`
	Answer   string `json:"answer"`
	Kind     string `json:"kind"`
	Hint     string `json:"hint"`
	Category string `json:"category"`
}

func runTask(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	asJSON, _ := cmd.Flags().GetBool("json")
	if count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	d, err := newDispatcherFromFlags(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for i := 1; i <= count; i++ {
		t, err := d.Next()
		if err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if asJSON {
			if err := enc.Encode(taskLine{
				Task:     t.Prompt,
				Answer:   t.Answer.String(),
				Kind:     string(t.Answer.Kind()),
				Hint:     t.Hint,
				Category: string(t.Category),
			}); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%d. [%s] %s\n", i, t.Category.DisplayName(), t.Prompt)
		fmt.Fprintf(out, "   Ответ: %s (%s)\n", t.Answer, t.Answer.Kind())
		fmt.Fprintf(out, "   Подсказка: %s\n", t.Hint)
	}
	return nil
}

// newDispatcherFromFlags builds a dispatcher from --seed and --category.
func newDispatcherFromFlags(cmd *cobra.Command) (*taskgen.Dispatcher, error) {
	seed, _ := cmd.Flags().GetUint64("seed")
	category, _ := cmd.Flags().GetString("category")

	if seed == 0 {
		s, err := taskgen.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		seed = s
	}

	cfg := taskgen.DefaultConfig()
	if category != "" {
		c := taskgen.Category(category)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", category)
		}
		cfg.Categories = []taskgen.Category{c}
	}
	return taskgen.NewDispatcher(taskgen.NewRand(seed), cfg)
}
