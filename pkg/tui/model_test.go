package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/roboricindustries/raycon-display/pkg/display"
	"github.com/roboricindustries/raycon-display/pkg/query"
	"github.com/roboricindustries/raycon-display/pkg/widgets"
)

func TestEmptyView(t *testing.T) {
	m := NewModel("/event/UIInstruction__e", display.View{Empty: true, MaxDisplayCount: 1}, nil, 0)
	out := m.View()
	require.Contains(t, out, emptyText)
	require.Contains(t, out, "unsubscribed")
	require.Contains(t, out, "0/1")
	require.Contains(t, out, "q quit")
}

func TestViewMsgRendersComponents(t *testing.T) {
	m := NewModel("/event/UIInstruction__e", display.View{Empty: true, MaxDisplayCount: 1}, nil, 0)

	start, end := "2024-01-01", "2024-03-31"
	threshold := 5000.0
	next, cmd := m.Update(ViewMsg{
		Components: []display.Descriptor{
			display.AccountDetail{Key: "account-001A-1", RecordID: "001A"},
			display.SalesTrendTable{Key: "sales-trend-2", Title: "Q1", StartDate: &start, EndDate: &end, HighlightThreshold: &threshold},
		},
		MaxDisplayCount: 2,
		Subscribed:      true,
		History: []display.Received{
			{Command: "showSalesTrendTable", ReceivedAt: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)},
		},
		LastError: "display is empty",
	})
	require.Nil(t, cmd)

	out := next.View()
	require.Contains(t, out, "001A")
	require.Contains(t, out, "Q1")
	require.Contains(t, out, "2024-03-31")
	require.Contains(t, out, "5000")
	require.Contains(t, out, "CloseDate")
	require.Contains(t, out, "● subscribed")
	require.Contains(t, out, "2/2")
	require.Contains(t, out, "09:30:00")
	require.Contains(t, out, "last drop: display is empty")
	require.NotContains(t, out, emptyText)

	require.Len(t, next.(Model).Snapshot().Components, 2)
}

func TestQuitKeys(t *testing.T) {
	m := NewModel("c", display.View{}, nil, 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.Nil(t, cmd)
}

func TestWindowSize(t *testing.T) {
	m := NewModel("c", display.View{}, nil, 0)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.Equal(t, 80, next.(Model).width)
}

type fakeService struct {
	matrix  [][]any
	failErr error
}

func (f fakeService) Matrix(context.Context, query.MatrixRequest) ([][]any, error) {
	return f.matrix, f.failErr
}

func (f fakeService) PieChart(context.Context, query.ChartRequest) (widgets.ChartData, error) {
	return widgets.ChartData{Labels: []string{"New Customer", "Renewal"}, Values: []float64{3, 1}, Total: 4}, nil
}

func (f fakeService) Aggregate(context.Context, query.MetricRequest) (widgets.MetricResult, error) {
	v := 12000.0
	return widgets.MetricResult{Value: &v}, nil
}

func (f fakeService) Activities(context.Context, string) ([]widgets.Activity, error) {
	return []widgets.Activity{
		{ID: "a1", Type: "task", Subject: "Call back", Priority: "High", ActivityDate: "2024-02-10"},
	}, nil
}

func (f fakeService) Account(_ context.Context, id string) (*widgets.Address, error) {
	if id != "001A" {
		return nil, nil
	}
	return &widgets.Address{Name: "Acme", Street: "1 Main St", City: "Springfield", State: "IL"}, nil
}

// drain runs cmd and every command batched inside it, feeding the results
// back into the model.
func drain(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	pending := []tea.Cmd{cmd}
	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			pending = append(pending, msg...)
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			pending = append(pending, next)
		}
	}
	return m
}

func TestPanelsLoadFromQueryService(t *testing.T) {
	svc := fakeService{matrix: [][]any{
		{"Type", "2024-01", "2024-02"},
		{"New Customer", 1500.0, nil},
		{"Renewal", nil, 7250.5},
	}}
	m := NewModel("c", display.View{MaxDisplayCount: 2}, svc, time.Second)

	threshold := 5000.0
	next, cmd := m.Update(ViewMsg{
		Components: []display.Descriptor{
			display.AccountDetail{Key: "account-001A-1", RecordID: "001A"},
			display.SalesTrendTable{Key: "sales-trend-2", Title: "Q1", HighlightThreshold: &threshold},
		},
		MaxDisplayCount: 2,
	})
	require.NotNil(t, cmd)
	require.Contains(t, next.View(), "loading…")

	out := drain(t, next, cmd).View()
	require.NotContains(t, out, "loading…")
	require.Contains(t, out, "Acme")
	require.Contains(t, out, "1 Main St, Springfield, IL")
	require.Contains(t, out, "Revenue Won")
	require.Contains(t, out, "12,000")
	require.Contains(t, out, "New Customer: 3 (75.0%)")
	require.Contains(t, out, "Call back")
	require.Contains(t, out, "Feb 10, 2024")
	require.Contains(t, out, "2024-02")
	require.Contains(t, out, "1,500")
	require.Contains(t, out, "7,250.50")
}

func TestPanelErrorIsShown(t *testing.T) {
	svc := fakeService{failErr: errors.New("db locked")}
	m := NewModel("c", display.View{}, svc, time.Second)
	next, cmd := m.Update(ViewMsg{
		Components:      []display.Descriptor{display.SalesTrendTable{Key: "sales-trend-1", Title: "Q1"}},
		MaxDisplayCount: 1,
	})
	out := drain(t, next, cmd).View()
	require.Contains(t, out, "query: db locked")
}

func TestEmptyMatrixShowsNoData(t *testing.T) {
	m := NewModel("c", display.View{}, fakeService{}, time.Second)
	next, cmd := m.Update(ViewMsg{
		Components:      []display.Descriptor{display.SalesTrendTable{Key: "sales-trend-1", Title: "Q1"}},
		MaxDisplayCount: 1,
	})
	require.Contains(t, drain(t, next, cmd).View(), "No data")
}

func TestPanelForRemovedComponentIsIgnored(t *testing.T) {
	m := NewModel("c", display.View{}, fakeService{}, time.Second)
	next, cmd := m.Update(ViewMsg{
		Components:      []display.Descriptor{display.AccountDetail{Key: "account-001A-1", RecordID: "001A"}},
		MaxDisplayCount: 1,
	})
	require.NotNil(t, cmd)
	msg := cmd()

	next, _ = next.Update(ViewMsg{Empty: true, MaxDisplayCount: 1})
	next, _ = next.Update(msg)
	require.Empty(t, next.(Model).panels)
}

func TestPanelsKeptWhileComponentStays(t *testing.T) {
	acct := display.AccountDetail{Key: "account-001A-1", RecordID: "001A"}
	m := NewModel("c", display.View{}, fakeService{}, time.Second)
	next, cmd := m.Update(ViewMsg{Components: []display.Descriptor{acct}, MaxDisplayCount: 2})
	next = drain(t, next, cmd)

	trend := display.SalesTrendTable{Key: "sales-trend-2", Title: "Q1"}
	next, cmd = next.Update(ViewMsg{Components: []display.Descriptor{trend, acct}, MaxDisplayCount: 2})
	require.NotNil(t, cmd)
	// only the new table loads; the account keeps its data
	require.True(t, next.(Model).panels[trend.Identity()].loading)
	require.True(t, next.(Model).panels[acct.Identity()].loaded)
}

func TestNoServiceMeansNoLoads(t *testing.T) {
	m := NewModel("c", display.View{
		Components:      []display.Descriptor{display.AccountDetail{Key: "account-001A-1", RecordID: "001A"}},
		MaxDisplayCount: 1,
	}, nil, 0)
	require.Nil(t, m.Init())
	require.Contains(t, m.View(), "Account Details")
}
