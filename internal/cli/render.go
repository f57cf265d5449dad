package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

var (
	ColorBorder = lipgloss.Color("#282726")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorMuted  = lipgloss.Color("#6F6E69")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorOrange = lipgloss.Color("#DA702C")
	ColorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// Table is a plain column table; widths are derived from the content.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(50).
		Align(lipgloss.Center).
		Padding(0, 1)
	return border.Render(titleStyle.Render(title))
}

// RenderTable renders headers and rows as aligned columns.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	for _, r := range t.Rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range t.Rows {
		for i, cell := range r {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	line := func(cells []string, style *lipgloss.Style) {
		b.WriteString(" ")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(" " + cell + strings.Repeat(" ", pad) + " ")
		}
		b.WriteString("\n")
	}
	if len(t.Headers) > 0 {
		line(t.Headers, &headerStyle)
		total := 0
		for _, w := range widths {
			total += w + 2
		}
		b.WriteString(" " + mutedStyle.Render(strings.Repeat("─", total)) + "\n")
	}
	for _, r := range t.Rows {
		line(r, nil)
	}
	return b.String()
}

// RenderBreakdown renders per-category totals, the daily ledger and the remaining budget.
func RenderBreakdown(b domain.BudgetBreakdown, currency string) string {
	rows := make([][]string, 0, len(domain.AllCategories))
	for _, cat := range domain.AllCategories {
		amount := b.Categories.Get(cat)
		rows = append(rows, []string{string(cat), FormatMoney(amount, currency), FormatShare(amount, b.Total)})
	}

	var out strings.Builder
	out.WriteString(RenderTable(Table{Title: "Categories", Headers: []string{"Category", "Amount", "Share"}, Rows: rows}))
	out.WriteString("\n")

	days := make([][]string, 0, len(b.Daily))
	for _, k := range slices.Sorted(maps.Keys(b.Daily)) {
		days = append(days, []string{k, FormatMoney(b.Daily[k], currency)})
	}
	if len(days) > 0 {
		out.WriteString(RenderTable(Table{Title: "Daily", Headers: []string{"Date", "Amount"}, Rows: days}))
		out.WriteString("\n")
	}

	remaining := FormatMoney(b.Remaining, currency)
	if b.Remaining < 0 {
		remaining = badStyle.Render(remaining)
	} else {
		remaining = goodStyle.Render(remaining)
	}
	fmt.Fprintf(&out, "  Total %s   Remaining %s\n", FormatMoney(b.Total, currency), remaining)
	if len(b.Alerts) > 0 {
		out.WriteString("\n" + RenderAlerts(b.Alerts))
	}
	return out.String()
}

// RenderAlerts renders one line per alert, colored by severity.
func RenderAlerts(alerts []domain.BudgetAlert) string {
	var b strings.Builder
	for _, a := range alerts {
		var marker string
		switch a.Type {
		case domain.AlertTypeExceeded:
			marker = badStyle.Render("✗")
		case domain.AlertTypeWarning:
			marker = warnStyle.Render("!")
		default:
			marker = goodStyle.Render("→")
		}
		fmt.Fprintf(&b, "  %s %s\n", marker, a.Message)
	}
	return b.String()
}

// RenderList renders a titled bullet list.
func RenderList(title string, items []string) string {
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render(title) + "\n")
	for _, it := range items {
		b.WriteString("  • " + it + "\n")
	}
	return b.String()
}

// RenderProgress renders rank, badges, achievements and challenges for one traveler.
func RenderProgress(stats domain.UserStats, report domain.GameProgressReport, achievements []domain.Achievement, challenges []domain.Challenge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  level %d  %s\n", headerStyle.Render(report.Rank.Name), report.Rank.Level,
		mutedStyle.Render(fmt.Sprintf("%d pts, %d to next", report.TotalPoints, report.Rank.PointsToNext)))
	fmt.Fprintf(&b, "  Trips %d   Countries %d   Streak %d (best %d)\n",
		stats.TripsCompleted, stats.CountriesVisited, stats.CurrentStreak, stats.LongestStreak)
	fmt.Fprintf(&b, "  Badges %d/%d %s %d%%\n\n", report.EarnedBadges, report.TotalBadges,
		ProgressBar(float64(report.CompletionPercentage)/100, 20), report.CompletionPercentage)

	if len(report.NextBadges) > 0 {
		rows := make([][]string, 0, len(report.NextBadges))
		for _, nb := range report.NextBadges {
			rows = append(rows, []string{nb.Badge.Name, ProgressBar(nb.Progress/100, 12), fmt.Sprintf("%.0f left", nb.Remaining)})
		}
		b.WriteString(RenderTable(Table{Title: "Next badges", Headers: []string{"Badge", "Progress", ""}, Rows: rows}))
		b.WriteString("\n")
	}

	if len(achievements) > 0 {
		rows := make([][]string, 0, len(achievements))
		for _, a := range achievements {
			frac := 0.0
			if a.MaxProgress > 0 {
				frac = a.Progress / a.MaxProgress
			}
			rows = append(rows, []string{string(a.Type), fmt.Sprintf("L%d", a.Level), ProgressBar(frac, 12)})
		}
		b.WriteString(RenderTable(Table{Title: "Achievements", Headers: []string{"Type", "Level", "Progress"}, Rows: rows}))
		b.WriteString("\n")
	}

	if len(challenges) > 0 {
		rows := make([][]string, 0, len(challenges))
		for _, c := range challenges {
			rows = append(rows, []string{c.Title, string(c.Difficulty), fmt.Sprintf("%.0f/%.0f", c.Current, c.Target)})
		}
		b.WriteString(RenderTable(Table{Title: "Challenges", Headers: []string{"Challenge", "Difficulty", "Progress"}, Rows: rows}))
	}
	return b.String()
}
