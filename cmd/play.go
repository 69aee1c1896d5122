package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/courseflow/internal/app"
	"github.com/abhisek/courseflow/internal/screen"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the course player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp wires the services and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	d.log.Info("starting player", "catalog", d.cfg.CatalogPath)
	return app.Run(screen.Env{
		StudentID: d.cfg.StudentID,
		Progress:  d.progress,
		Feedback:  newFeedback(cmd.Context(), d),
		Log:       d.log,
	})
}
