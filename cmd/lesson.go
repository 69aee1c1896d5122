package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/courseflow/internal/gate"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/ui/components"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Check or complete a single lesson",
}

var lessonStatusCmd = &cobra.Command{
	Use:   "status <course> <lesson>",
	Short: "Show whether a lesson is unlocked",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		courseID, lessonID := args[0], args[1]
		status, err := d.progress.Status(ctx, d.cfg.StudentID, courseID, lessonID)
		if err != nil {
			return err
		}

		l, _ := d.catalog.Lesson(courseID, lessonID)
		fmt.Printf("%s (%s)\n", l.Title, l.Type)
		if status.Locked {
			fmt.Printf("Locked [%s]: %s\n", status.Reason, status.Message)
		} else {
			fmt.Println("Unlocked")
		}

		if l.IsTest() {
			ledger, err := d.progress.Ledger(ctx, d.cfg.StudentID, l)
			if err != nil {
				return err
			}
			fmt.Println(components.LedgerSummary(ledger))
		}
		return nil
	},
}

var lessonCompleteCmd = &cobra.Command{
	Use:   "complete <course> <lesson>",
	Short: "Mark a text or video lesson as completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.progress.CompleteLesson(cmd.Context(), d.cfg.StudentID, args[0], args[1])
		var locked *gate.LockedError
		switch {
		case errors.As(err, &locked):
			return fmt.Errorf("%s", locked.Status.Message)
		case errors.Is(err, progress.ErrIsTest):
			return fmt.Errorf("%s is a test; pass it in the player to complete it", args[1])
		case err != nil:
			return err
		}

		fmt.Printf("Completed %s (%d/%d lessons)\n", args[1], len(p.CompletedLessonIDs), len(d.catalog.Lessons(args[0])))
		if p.Completed {
			fmt.Println("Course completed!")
		}
		return nil
	},
}

func init() {
	lessonCmd.AddCommand(lessonStatusCmd)
	lessonCmd.AddCommand(lessonCompleteCmd)
}
