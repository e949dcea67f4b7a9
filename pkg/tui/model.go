// Package tui renders the display stack in a terminal with Bubble Tea.
// It only observes: state arrives as ViewMsg values sent from the display's
// change callback. Panel data is fetched from the query service as each
// component appears and dropped when it leaves the stack.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roboricindustries/raycon-display/pkg/display"
	"github.com/roboricindustries/raycon-display/pkg/query"
	"github.com/roboricindustries/raycon-display/pkg/widgets"
)

const defaultQueryTimeout = 5 * time.Second

// ViewMsg carries a fresh display snapshot into the program.
type ViewMsg display.View

// panelMsg delivers the data loaded for one component.
type panelMsg struct {
	key  string
	data panel
}

type panel struct {
	loading    bool
	loaded     bool
	err        error
	matrix     [][]any
	chart      widgets.ChartData
	won        widgets.MetricResult
	pipeline   widgets.MetricResult
	activities []widgets.Activity
	address    *widgets.Address
}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the root Bubble Tea model.
type Model struct {
	channel string
	view    display.View
	width   int
	height  int

	query   query.Service
	timeout time.Duration
	panels  map[string]panel
}

// NewModel builds the model. svc may be nil, in which case panels show their
// configuration only.
func NewModel(channel string, initial display.View, svc query.Service, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	m := Model{channel: channel, query: svc, timeout: timeout}
	m, _ = m.setView(initial)
	return m
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range m.view.Components {
		if p, ok := m.panels[c.Identity()]; ok && p.loading {
			cmds = append(cmds, m.load(c))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		return m, nil

	case ViewMsg:
		return m.setView(display.View(msg))

	case panelMsg:
		if _, ok := m.panels[msg.key]; !ok {
			// component left the stack while loading
			return m, nil
		}
		panels := make(map[string]panel, len(m.panels))
		for k, v := range m.panels {
			panels[k] = v
		}
		panels[msg.key] = msg.data
		m.panels = panels
		return m, nil
	}
	return m, nil
}

// setView swaps in v, keeps panel data for components still on the stack and
// starts loading the new ones.
func (m Model) setView(v display.View) (Model, tea.Cmd) {
	m.view = v
	panels := make(map[string]panel, len(v.Components))
	var cmds []tea.Cmd
	for _, c := range v.Components {
		k := c.Identity()
		if p, ok := m.panels[k]; ok {
			panels[k] = p
			continue
		}
		if m.query == nil {
			continue
		}
		panels[k] = panel{loading: true}
		cmds = append(cmds, m.load(c))
	}
	m.panels = panels
	return m, tea.Batch(cmds...)
}

func (m Model) load(c display.Descriptor) tea.Cmd {
	svc, timeout, k := m.query, m.timeout, c.Identity()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return panelMsg{key: k, data: loadPanel(ctx, svc, c)}
	}
}

func loadPanel(ctx context.Context, svc query.Service, c display.Descriptor) panel {
	p := panel{loaded: true}
	switch d := c.(type) {
	case display.SalesTrendTable:
		p.matrix, p.err = svc.Matrix(ctx, query.SalesTrendMatrix(widgets.SalesTrend(d)))

	case display.AccountDetail:
		cfg := widgets.Account(d)
		var errs []error
		var err error
		if p.address, err = svc.Account(ctx, d.RecordID); err != nil {
			errs = append(errs, err)
		}
		if p.chart, err = svc.PieChart(ctx, query.OpportunityTypeChart(cfg)); err != nil {
			errs = append(errs, err)
		}
		if p.won, err = svc.Aggregate(ctx, query.RevenueWonMetric(cfg)); err != nil {
			errs = append(errs, err)
		}
		if p.pipeline, err = svc.Aggregate(ctx, query.PipelineMetric(cfg)); err != nil {
			errs = append(errs, err)
		}
		if p.activities, err = svc.Activities(ctx, d.RecordID); err != nil {
			errs = append(errs, err)
		}
		p.err = errors.Join(errs...)
	}
	return p
}

// Snapshot returns the view currently rendered.
func (m Model) Snapshot() display.View { return m.view }
