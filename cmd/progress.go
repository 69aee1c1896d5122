package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/ui/components"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or reset course progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show <course>",
	Short: "Show the student's progress in a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ov, err := d.progress.Overview(cmd.Context(), d.cfg.StudentID, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", ov.Course.Title, d.cfg.StudentID)
		fmt.Printf("Completed %d/%d lessons", ov.CompletedCount(), len(ov.Lessons))
		if ov.Progress != nil && ov.Progress.TestScore != nil {
			fmt.Printf(", latest passing test score %d%%", *ov.Progress.TestScore)
		}
		if ov.Progress != nil && ov.Progress.Completed {
			fmt.Print(" (course completed)")
		}
		fmt.Println()
		fmt.Println(strings.Repeat("─", 90))

		for _, st := range ov.Lessons {
			state := "open"
			switch {
			case st.Completed:
				state = "done"
			case st.Status.Locked:
				state = "locked: " + string(st.Status.Reason)
			}
			detail := ""
			if st.Ledger != nil {
				detail = components.LedgerSummary(*st.Ledger)
			}
			fmt.Printf("%3d  %-20s  %-6s  %-22s  %s\n",
				st.Lesson.Order, truncate(st.Lesson.ID, 20), st.Lesson.Type, state, detail)
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset <course>",
	Short: "Reset progress in a course",
	Long: `Reset progress in a course.

  all    delete progress, attempt ledgers and attempt history
  tests  keep completed reading lessons, reset every test
  keep   change nothing`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeVal, _ := cmd.Flags().GetString("mode")
		mode, err := progress.ParseResetMode(modeVal)
		if err != nil {
			return err
		}

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.progress.Reset(cmd.Context(), d.cfg.StudentID, args[0], mode); err != nil {
			return err
		}
		fmt.Printf("Reset %s for %s (mode %s)\n", args[0], d.cfg.StudentID, mode)
		return nil
	},
}

func init() {
	progressResetCmd.Flags().String("mode", "", "Reset mode: all, tests or keep (required)")
	_ = progressResetCmd.MarkFlagRequired("mode")

	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)
}
