package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts <course> [lesson]",
	Short: "List submitted test attempts, newest first",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		lessonID := ""
		if len(args) == 2 {
			lessonID = args[1]
		}

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.progress.Attempts(cmd.Context(), d.cfg.StudentID, args[0], lessonID, limit)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No attempts recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-16s  %6s  %9s  %-7s  %-8s  %s\n",
			"ID", "Timestamp", "Lesson", "Score", "Points", "Result", "End", "Time")
		fmt.Println(strings.Repeat("─", 92))

		for _, e := range events {
			result := "fail"
			switch {
			case e.Passed:
				result = "pass"
			case e.PendingManual:
				result = "pending"
			}
			fmt.Printf("%-5d  %-19s  %-16s  %5d%%  %9s  %-7s  %-8s  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.LessonID, 16),
				e.Score,
				fmt.Sprintf("%d/%d", e.EarnedPoints, e.TotalPoints),
				result,
				e.EndReason,
				formatDuration(e.DurationSecs),
			)
		}
		return nil
	},
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}

func init() {
	attemptsCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show (0 for all)")
}
