package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fokus/internal/store"
)

const recentSessions = 8

type statsModel struct {
	store  *store.Store
	width  int
	height int

	summaries  []store.DailyFocus
	recent     []store.PhaseEntry
	todayTotal int64
	offset     int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newStatsModel(s *store.Store) statsModel {
	return statsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *statsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type statsDataMsg struct {
	summaries  []store.DailyFocus
	recent     []store.PhaseEntry
	todayTotal int64
}

func (r statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := r.dateRange()
		summaries, _ := r.store.GetFocusSummary(from, to)
		recent, _ := r.store.ListPhases(from, to)
		if len(recent) > recentSessions {
			recent = recent[:recentSessions]
		}
		total, _ := r.store.GetTodayFocus()
		return statsDataMsg{summaries: summaries, recent: recent, todayTotal: total}
	}
}

// dateRange is the 7 days ending today, shifted back by offset weeks.
func (r statsModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-7*r.offset)
	return end.AddDate(0, 0, -7), end
}

func (r statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		r.summaries = msg.summaries
		r.recent = msg.recent
		r.todayTotal = msg.todayTotal
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *statsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()
	style := lipgloss.NewStyle().Foreground(colorAccent)

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")

		value := barchart.BarValue{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}
		for _, s := range r.summaries {
			if s.Date == dateStr {
				value = barchart.BarValue{Name: "Focus", Value: float64(s.TotalSeconds) / 60, Style: style}
			}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: []barchart.BarValue{value},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r statsModel) view() string {
	w := r.width - 4

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))
	today := highlightStyle.Render("today " + formatSeconds(r.todayTotal))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Focus minutes"), "  ", dateLabel, "  ", today,
	)

	nav := mutedStyle.Render("  ←/→: navigate weeks")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderSummaryTable(w), "", r.renderRecent(), "", nav,
		),
	)
}

func (r statsModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No focus sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %9s", "Date", "Focus", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 33))))

	var total int64
	for _, s := range r.summaries {
		total += s.TotalSeconds
		rows = append(rows, fmt.Sprintf("  %-12s %10s %9d", s.Date, formatSeconds(s.TotalSeconds), s.Count))
	}
	rows = append(rows, highlightStyle.Render(fmt.Sprintf("  %-12s %10s", "Total", formatSeconds(total))))

	return strings.Join(rows, "\n")
}

func (r statsModel) renderRecent() string {
	if len(r.recent) == 0 {
		return ""
	}
	rows := []string{titleStyle.Render("  Recent")}
	for _, e := range r.recent {
		label := e.Label
		if label == "" {
			label = "-"
		}
		rows = append(rows, fmt.Sprintf("  %s  %-6s %6s  %s",
			e.CompletedAt.Local().Format("Mon 15:04"), e.Phase, formatMinutes(e.Seconds), mutedStyle.Render(label)))
	}
	return strings.Join(rows, "\n")
}
