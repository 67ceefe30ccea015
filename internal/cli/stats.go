package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/fokus/internal/store"
	"github.com/sadopc/fokus/internal/tasks"
)

func newStatsCmd(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show focus time per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			s, _, err := opts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			now := time.Now().UTC()
			to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
			from := to.AddDate(0, 0, -days)

			summaries, err := s.GetFocusSummary(from, to)
			if err != nil {
				return fmt.Errorf("focus summary: %w", err)
			}
			today, err := s.GetTodayFocus()
			if err != nil {
				return fmt.Errorf("today's focus: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Today: %s\n", formatFocus(today))
			if len(summaries) == 0 {
				fmt.Fprintf(out, "No focus sessions in the last %d days\n", days)
				return nil
			}
			fmt.Fprintln(out, renderSummary(summaries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "number of days to include, ending today")
	return cmd
}

func renderSummary(summaries []store.DailyFocus) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Focus", "Sessions")
	var total int64
	for _, d := range summaries {
		total += d.TotalSeconds
		t.Row(d.Date, formatFocus(d.TotalSeconds), strconv.Itoa(d.Count))
	}
	t.Row("Total", formatFocus(total), "")
	return t.String()
}

func formatFocus(secs int64) string {
	if secs >= 3600 {
		return fmt.Sprintf("%dh %02dm", secs/3600, secs%3600/60)
	}
	return tasks.FormatClock(int(secs))
}
