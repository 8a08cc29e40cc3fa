package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathgym/internal/store"
	"github.com/abhisek/mathgym/internal/taskgen"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Practice in the terminal",
	Long: `Answer generated tasks interactively.

Each correct answer earns one star. With --user the stars are added to
that learner's stored score when the session ends.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntP("count", "n", 10, "Number of tasks")
	playCmd.Flags().Uint64("seed", 0, "Random seed for a reproducible session (0 picks one)")
	playCmd.Flags().String("category", "", "Restrict to one category")
	playCmd.Flags().StringP("user", "u", "", "Add earned stars to this learner's score")
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func runPlay(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	user, _ := cmd.Flags().GetString("user")
	if count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	d, err := newDispatcherFromFlags(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	var correct int

	for i := 1; i <= count; i++ {
		t, err := d.Next()
		if err != nil {
			fmt.Fprintf(out, "Задача %d: %v\n\n", i, err)
			continue
		}

		fmt.Fprintf(out, "── Задача %d/%d · %s ──\n", i, count, t.Category.DisplayName())
		fmt.Fprintln(out, t.Prompt)

		fmt.Fprint(out, "\nВаш ответ (? для подсказки): ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(ввод закрыт)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "?" {
			dimColor.Fprintf(out, "Подсказка: %s\n", t.Hint)
			fmt.Fprint(out, "Ваш ответ: ")
			if !scanner.Scan() {
				fmt.Fprintln(out, "\n(ввод закрыт)")
				break
			}
			answer = strings.TrimSpace(scanner.Text())
		}
		if answer == "" {
			fmt.Fprintln(out, "(пропущено)")
			fmt.Fprintln(out)
			continue
		}

		ok, err := taskgen.Verify(answer, t.Answer)
		switch {
		case errors.Is(err, taskgen.ErrMalformedAnswer):
			failColor.Fprint(out, "✗ Это не число.")
			fmt.Fprintf(out, " Ответ: %s\n", t.Answer)
		case ok:
			correct++
			okColor.Fprintln(out, "✓ Верно! +1 ⭐")
		default:
			failColor.Fprint(out, "✗ Неверно.")
			fmt.Fprintf(out, " Ответ: %s\n", t.Answer)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "── Итог: %d/%d верно ──\n", correct, count)

	if user == "" || correct == 0 {
		return nil
	}
	total, err := addStars(cmd, user, int64(correct))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: всего %d ⭐\n", user, total)
	return nil
}

// addStars adds earned to the learner's stored score and returns the new total.
func addStars(cmd *cobra.Command, username string, earned int64) (int64, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return 0, err
	}
	st, err := openStore(ctx, cmd, cfg)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	total, err := st.Scores(store.ScorePolicy(cfg.Scores.Policy)).AddStars(ctx, username, earned)
	if errors.Is(err, store.ErrUserNotFound) {
		fmt.Fprintf(os.Stderr, "learner %q not found; stars were not saved\n", username)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("save stars: %w", err)
	}
	return total, nil
}
