package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/courseflow/internal/llm"
	"github.com/abhisek/courseflow/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM requests made for attempt feedback",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		d, err := openStoreOnly(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		rows, err := d.store.EventRepo().QueryLLMRequests(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query LLM requests: %w", err)
		}
		if purpose != "" {
			rows = filterPurpose(rows, purpose)
		}
		if len(rows) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-10s  %-28s  %6s  %6s  %7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(rule(96))
		for _, e := range rows {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-10s  %-28s  %6d  %6d  %7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 10),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		d, err := openStoreOnly(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		e, err := d.store.EventRepo().GetLLMRequest(cmd.Context(), id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("LLM request %d not found", id)
		}
		printLLMRequest(e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStoreOnly(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		events := d.store.EventRepo()

		byPurpose, err := events.LLMUsageBy(ctx, "purpose")
		if err != nil {
			return err
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}
		byModel, err := events.LLMUsageBy(ctx, "model")
		if err != nil {
			return err
		}

		printUsage("Purpose", byPurpose)
		fmt.Println()
		printCost(byModel)
		return nil
	},
}

func filterPurpose(rows []store.LLMRequestEvent, purpose string) []store.LLMRequestEvent {
	out := rows[:0]
	for _, e := range rows {
		if e.Purpose == purpose {
			out = append(out, e)
		}
	}
	return out
}

func printLLMRequest(e *store.LLMRequestEvent) {
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Purpose", e.Purpose},
		{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Success", strconv.FormatBool(e.Success)},
	}
	if e.ErrorMessage != "" {
		fields = append(fields, [2]string{"Error", e.ErrorMessage})
	}
	for _, f := range fields {
		fmt.Printf("%-10s %s\n", f[0]+":", f[1])
	}

	for _, section := range [][2]string{{"REQUEST", e.RequestBody}, {"RESPONSE", e.ResponseBody}} {
		fmt.Println()
		fmt.Println(rule(60))
		fmt.Println(section[0])
		fmt.Println(rule(60))
		if section[1] == "" {
			fmt.Println("(not captured)")
		} else {
			fmt.Println(section[1])
		}
	}
}

func printUsage(label string, usage []store.LLMUsage) {
	fmt.Printf("Usage by %s\n", label)
	fmt.Println(rule(72))
	fmt.Printf("%-20s  %6s  %10s  %10s  %10s  %7s\n", label, "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Println(rule(72))

	var calls, in, out int
	for _, u := range usage {
		fmt.Printf("%-20s  %6d  %10d  %10d  %10d  %7d\n",
			truncate(u.Key, 20), u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Println(rule(72))
	fmt.Printf("%-20s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, out, in+out)
}

func printCost(byModel []store.LLMUsage) {
	fmt.Println("Estimated Cost (USD)")
	fmt.Println(rule(72))

	var total float64
	var unpriced []string
	for _, u := range byModel {
		price := llm.LookupCost(u.Key)
		if price == nil {
			unpriced = append(unpriced, u.Key)
			fmt.Printf("%-32s  %6d  %10s\n", truncate(u.Key, 32), u.Calls, "?")
			continue
		}
		c := price.Cost(u.InputTokens, u.OutputTokens)
		total += c
		fmt.Printf("%-32s  %6d  %10s\n", truncate(u.Key, 32), u.Calls, formatCost(c))
	}
	fmt.Println(rule(72))

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Printf("%-32s  %6s  %10s\n", label, "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

func rule(n int) string { return strings.Repeat("─", n) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. feedback)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
