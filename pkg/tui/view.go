package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roboricindustries/raycon-display/pkg/display"
	"github.com/roboricindustries/raycon-display/pkg/widgets"
)

const emptyText = "No components to display"

func (m Model) View() string {
	sections := []string{m.renderHeader()}

	if m.view.Empty || len(m.view.Components) == 0 {
		sections = append(sections, emptyStyle.Render(emptyText))
	} else {
		for _, c := range m.view.Components {
			sections = append(sections, m.renderComponent(c))
		}
	}

	if m.view.LastError != "" {
		sections = append(sections, errorStyle.Render("last drop: "+m.view.LastError))
	}
	if h := m.renderHistory(); h != "" {
		sections = append(sections, h)
	}
	help := keys.Quit.Help()
	sections = append(sections, keyStyle.Render(help.Key+" "+help.Desc))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	sep := headerSepStyle.Render(" │ ")
	state := unsubscribedStyle.Render("○ unsubscribed")
	if m.view.Subscribed {
		state = subscribedStyle.Render("● subscribed")
	}
	count := fmt.Sprintf("%d/%d", len(m.view.Components), m.view.MaxDisplayCount)
	bar := headerBrandStyle.Render("raycon-display") + sep +
		headerMetaStyle.Render(m.channel) + sep +
		state + sep +
		headerMetaStyle.Render(count)
	style := headerBarStyle
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(bar)
}

func (m Model) renderComponent(c display.Descriptor) string {
	p := m.panels[c.Identity()]
	var body string
	switch d := c.(type) {
	case display.AccountDetail:
		body = renderAccount(widgets.Account(d), p)
	case display.SalesTrendTable:
		body = renderSalesTrend(widgets.SalesTrend(d), p)
	default:
		body = errorStyle.Render("unsupported component " + string(c.Kind()))
	}
	if p.loading {
		body += "\n" + labelStyle.Render("loading…")
	}
	if p.err != nil {
		body += "\n" + errorStyle.Render("query: "+p.err.Error())
	}
	style := panelStyle
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return style.Render(body)
}

const maxTimelineItems = 5

func renderAccount(cfg widgets.AccountConfig, p panel) string {
	lines := []string{
		accountTitleStyle.Render(widgets.AccountTitle(p.address)),
		field("record", cfg.RecordID),
	}
	for _, mk := range widgets.Markers(p.address) {
		lines = append(lines, field("billing", mk.Description))
	}
	if !p.loading && p.err == nil && p.address != nil {
		for _, mt := range []widgets.Metric{
			widgets.BuildMetric("Revenue Won", p.won),
			widgets.BuildMetric("Pipeline", p.pipeline),
		} {
			lines = append(lines, field(mt.Title, orDash(mt.Formatted)))
		}
	}
	if pc := widgets.BuildPieChart(p.chart, "default"); len(pc.Slices) > 0 {
		lines = append(lines, labelStyle.Render("opportunities by type (total "+pc.FormattedTotal+")"))
		for _, sl := range pc.Slices {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(sl.Color)).Render("■")
			lines = append(lines, "  "+swatch+" "+valueStyle.Render(sl.Tooltip()))
		}
	}
	items := widgets.ProcessActivities(p.activities)
	if len(items) > 0 {
		lines = append(lines, labelStyle.Render("activity"))
		for i, it := range items {
			if i == maxTimelineItems {
				lines = append(lines, historyStyle.Render(fmt.Sprintf("  … %d more", len(items)-i)))
				break
			}
			lines = append(lines, renderTimelineItem(it))
		}
	}
	lines = append(lines, keyStyle.Render(cfg.Key))
	return strings.Join(lines, "\n")
}

func renderTimelineItem(it widgets.TimelineItem) string {
	icon := "•"
	switch {
	case it.IsTask:
		icon = "☐"
	case it.IsEvent:
		icon = "◷"
	case it.IsEmail:
		icon = "✉"
	}
	line := "  " + icon + " " + orDash(it.FormattedDate) + "  " + it.Subject
	if it.IsHighPriority {
		return errorStyle.Render(line + " !")
	}
	return valueStyle.Render(line)
}

func renderSalesTrend(cfg widgets.SalesTrendConfig, p panel) string {
	lines := []string{trendTitleStyle.Render(cfg.Title)}
	if cfg.StartDate != "" || cfg.EndDate != "" {
		lines = append(lines, field("range", orDash(cfg.StartDate)+" → "+orDash(cfg.EndDate)))
	}
	if cfg.RecordID != "" {
		lines = append(lines, field("record", cfg.RecordID))
	}
	if cfg.HighlightThreshold != nil {
		lines = append(lines, labelStyle.Render("highlight ≥ ")+
			thresholdStyle.Render(strconv.FormatFloat(*cfg.HighlightThreshold, 'f', -1, 64)))
	}
	lines = append(lines, field("filters", cfg.Filters.JSON()))
	if mat := cfg.Matrix(p.matrix); !mat.Empty() {
		lines = append(lines, renderMatrix(mat))
	} else if p.loaded && p.err == nil {
		lines = append(lines, emptyStyle.Render("No data"))
	}
	lines = append(lines, keyStyle.Render(cfg.Key))
	return strings.Join(lines, "\n")
}

// renderMatrix lays the table out in fixed-width columns: the row label
// left-aligned, values right-aligned, highlighted cells styled.
func renderMatrix(mat widgets.Matrix) string {
	widths := make([]int, len(mat.Headers))
	for j, h := range mat.Headers {
		widths[j] = lipgloss.Width(h)
	}
	for _, r := range mat.Rows {
		for j, c := range r.Cells {
			if j < len(widths) && lipgloss.Width(c.Formatted) > widths[j] {
				widths[j] = lipgloss.Width(c.Formatted)
			}
		}
	}

	pad := func(s string, w int, left bool) string {
		gap := w - lipgloss.Width(s)
		if gap <= 0 {
			return s
		}
		if left {
			return s + strings.Repeat(" ", gap)
		}
		return strings.Repeat(" ", gap) + s
	}

	head := make([]string, len(mat.Headers))
	for j, h := range mat.Headers {
		head[j] = matrixHeaderStyle.Render(pad(h, widths[j], j == 0))
	}
	out := []string{strings.Join(head, "  ")}
	for _, r := range mat.Rows {
		cells := make([]string, 0, len(r.Cells))
		for j, c := range r.Cells {
			w := 0
			if j < len(widths) {
				w = widths[j]
			}
			text := pad(c.Formatted, w, c.IsHeader)
			switch {
			case c.Highlighted:
				text = highlightCellStyle.Render(text)
			case c.IsHeader:
				text = labelStyle.Render(text)
			default:
				text = valueStyle.Render(text)
			}
			cells = append(cells, text)
		}
		out = append(out, strings.Join(cells, "  "))
	}
	return strings.Join(out, "\n")
}

func (m Model) renderHistory() string {
	if len(m.view.History) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.view.History)+1)
	lines = append(lines, labelStyle.Render("recent instructions"))
	for _, r := range m.view.History {
		line := r.ReceivedAt.Format("15:04:05") + "  " + orDash(r.Command)
		if r.RecordID != "" {
			line += "  " + r.RecordID
		}
		if r.Parameters != "" {
			line += "  " + r.Parameters
		}
		lines = append(lines, historyStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
