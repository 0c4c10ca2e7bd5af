package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/nashtech/odmat/internal/llm"
	"github.com/nashtech/odmat/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, From: since(cmd)})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		t := newTable([]string{"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK"}, 0, 4, 5, 6)
		var n int
		for _, ev := range events {
			if purpose != "" && ev.Purpose != purpose {
				continue
			}
			n++
			t.Row(
				strconv.Itoa(ev.ID),
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Purpose,
				truncate(ev.Model, 28),
				strconv.Itoa(ev.InputTokens),
				strconv.Itoa(ev.OutputTokens),
				strconv.FormatInt(ev.LatencyMs, 10),
				mark(ev.Success),
			)
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No LLM requests recorded.")
			return nil
		}
		printTable(cmd.OutOrStdout(), t)
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

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("event %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		printLLMEvent(cmd.OutOrStdout(), ev)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		byPurpose, err := e.store.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		byModel, err := e.store.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		fmt.Fprintln(out, "Usage by purpose")
		printTable(out, usageTable(byPurpose))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Estimated cost (USD)")
		t, unknown := costTable(byModel)
		printTable(out, t)
		if len(unknown) > 0 {
			fmt.Fprintf(out, "Pricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().Duration("since", 0, "Only show requests newer than this (e.g. 24h)")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. recommendations)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

func printLLMEvent(w io.Writer, ev *store.LLMRequestEventRecord) {
	fields := []struct{ k, v string }{
		{"ID", strconv.Itoa(ev.ID)},
		{"Time", ev.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Provider", ev.Provider},
		{"Model", ev.Model},
		{"Purpose", ev.Purpose},
		{"Tokens", fmt.Sprintf("%d in / %d out", ev.InputTokens, ev.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", ev.LatencyMs)},
		{"Success", mark(ev.Success)},
	}
	if ev.ErrorMessage != "" {
		fields = append(fields, struct{ k, v string }{"Error", ev.ErrorMessage})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-10s %s\n", f.k+":", f.v)
	}

	for _, body := range []struct{ title, text string }{
		{"REQUEST", ev.RequestBody},
		{"RESPONSE", ev.ResponseBody},
	} {
		fmt.Fprintf(w, "\n── %s %s\n", body.title, strings.Repeat("─", 56-len(body.title)))
		if body.text == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, body.text)
	}
}

func usageTable(rows []store.LLMUsage) *table.Table {
	t := newTable([]string{"Purpose", "Calls", "Input", "Output", "Total", "Avg ms"}, 1, 2, 3, 4, 5)
	var calls, in, out int
	for _, u := range rows {
		t.Row(u.Purpose,
			strconv.Itoa(u.Calls),
			strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens),
			strconv.Itoa(u.InputTokens+u.OutputTokens),
			strconv.FormatInt(u.AvgLatencyMs, 10))
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	t.Row("TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), strconv.Itoa(in+out), "")
	return t
}

// costTable prices each model's usage. Models without a known price are
// shown with "?" and returned so the caller can flag the total as partial.
func costTable(rows []store.LLMUsage) (*table.Table, []string) {
	t := newTable([]string{"Model", "Calls", "Input", "Output", "Cost"}, 1, 2, 3, 4)
	var total float64
	var unknown []string
	for _, u := range rows {
		cost := "?"
		if mc := llm.LookupCost(u.Model); mc != nil {
			c := mc.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unknown = append(unknown, u.Model)
		}
		t.Row(truncate(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost)
	}
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	t.Row(label, "", "", "", formatCost(total))
	return t, unknown
}

// since converts the --since flag into a lower time bound.
func since(cmd *cobra.Command) time.Time {
	d, _ := cmd.Flags().GetDuration("since")
	if d <= 0 {
		return time.Time{}
	}
	return nowFunc().Add(-d)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
