package cmd

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var ratingCmd = &cobra.Command{
	Use:   "rating",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx := cmd.Context()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if limit <= 0 {
			limit = cfg.Scores.LeaderboardLimit
		}
		st, err := openStore(ctx, cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		board, err := st.Scores("").Leaderboard(ctx, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(board) == 0 {
			fmt.Fprintln(out, "No learners yet.")
			return nil
		}

		fmt.Fprintf(out, "%4s  %-24s  %8s  %s\n", "#", "Username", "Stars", "Last active")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for i, e := range board {
			name := e.Username
			if utf8.RuneCountInString(name) > 24 {
				name = string([]rune(name)[:21]) + "..."
			}
			last := "-"
			if e.LastActive != nil {
				last = e.LastActive.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "%4d  %-24s  %8d  %s\n", i+1, name, e.Stars, last)
		}
		return nil
	},
}

func init() {
	ratingCmd.Flags().IntP("limit", "n", 0, "Number of learners to show (default scores.leaderboard_limit)")
}
