package cmd

import (
	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X github.com/abhisek/courseflow/cmd.version=...".
var version = "(devel)"

var rootCmd = &cobra.Command{
	Use:   "courseflow",
	Short: "Terminal course player",
	Long: `Courseflow: work through courses in the terminal. Lessons unlock in order,
tests are timed and limited in attempts, and progress is kept in a local database.`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default: ./courseflow.yaml, then the user config dir)")
	pf.String("db", "", "Path to SQLite database file (overrides COURSEFLOW_DB env var)")
	pf.String("catalog", "", "Path to the course catalog JSON (default: courses.json)")
	pf.String("student", "", "Student ID progress is recorded under (default: $USER)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.SetVersionTemplate("courseflow {{.Version}}\n")
}
