package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/courseflow/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect course catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog file and report problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			return err
		}

		var lessons, tests int
		for _, c := range cat.Courses() {
			for _, l := range c.Lessons {
				lessons++
				if l.IsTest() {
					tests++
				}
			}
		}
		fmt.Printf("%s: %d courses, %d lessons, %d tests\n", args[0], len(cat.Courses()), lessons, tests)

		issues := cat.Issues()
		for _, issue := range issues {
			fmt.Println("  warning:", issue)
		}
		if len(issues) > 0 {
			fmt.Printf("%d question(s) will score zero until fixed.\n", len(issues))
		}
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the courses and lessons of the configured catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return err
		}

		for _, c := range cat.Courses() {
			fmt.Printf("%s  %s\n", c.ID, c.Title)
			fmt.Println(strings.Repeat("─", 72))
			for _, l := range cat.Lessons(c.ID) {
				fmt.Printf("  %3d  %-20s  %-6s  %s\n", l.Order, truncate(l.ID, 20), l.Type, l.Title)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)
}
