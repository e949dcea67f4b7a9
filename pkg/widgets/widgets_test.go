package widgets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roboricindustries/raycon-display/pkg/display"
)

func ptr[T any](v T) *T { return &v }

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-05":           "2024-01-05",
		"2024-03-31T10:00:00Z": "2024-03-31",
		"03/31/2024":           "2024-03-31",
		"Mar 1, 2024":          "2024-03-01",
		"":                     "",
		"tomorrow":             "",
		"2024-13-45":           "",
	}
	for in, want := range cases {
		require.Equal(t, want, FormatDate(in), in)
	}
}

func TestSalesTrendFilters(t *testing.T) {
	cfg := SalesTrend(display.SalesTrendTable{
		Key:       "sales-trend-1",
		Title:     "Q1",
		StartDate: ptr("2024-01-01"),
		EndDate:   ptr("2024-03-31T00:00:00Z"),
		RecordID:  ptr("001A"),
	})
	require.Equal(t, "Q1", cfg.Title)
	require.Equal(t, "001A", cfg.RecordID)
	require.Equal(t, Filters{
		{FieldName: "CloseDate", Operator: ">=", Value: "2024-01-01"},
		{FieldName: "CloseDate", Operator: "<=", Value: "2024-03-31"},
	}, cfg.Filters)
	require.Equal(t,
		`[{"fieldName":"CloseDate","operator":">=","value":"2024-01-01"},{"fieldName":"CloseDate","operator":"<=","value":"2024-03-31"}]`,
		cfg.Filters.JSON())
}

func TestSalesTrendNeedsBothDates(t *testing.T) {
	cfg := SalesTrend(display.SalesTrendTable{StartDate: ptr("2024-01-01"), EndDate: ptr("soon")})
	require.Empty(t, cfg.Filters)
	require.Equal(t, "[]", cfg.Filters.JSON())
	require.Equal(t, display.DefaultSalesTrendTitle, cfg.Title)
	require.Equal(t, "", cfg.EndDate)
}

func TestSalesTrendMatrixUsesThreshold(t *testing.T) {
	data := [][]any{{"Type", "2024-01"}, {"New", 5000.0}, {"Renewal", 4999.99}}

	m := SalesTrend(display.SalesTrendTable{}).Matrix(data)
	require.False(t, m.Rows[0].Cells[1].Highlighted)

	m = SalesTrend(display.SalesTrendTable{}.WithHighlightThreshold(5000)).Matrix(data)
	require.True(t, m.Rows[0].Cells[1].Highlighted)
	require.False(t, m.Rows[1].Cells[1].Highlighted)
}

func TestAccountFilters(t *testing.T) {
	cfg := Account(display.AccountDetail{Key: "account-001-1", RecordID: "001"})
	require.Equal(t, `[{"fieldName":"AccountId","operator":"=","value":"001"}]`, cfg.OpportunityByType.JSON())
	require.Equal(t, Filter{FieldName: "IsWon", Operator: "=", Value: "true"}, cfg.RevenueWon[1])
	require.Equal(t, Filter{FieldName: "IsClosed", Operator: "=", Value: "false"}, cfg.Pipeline[1])
	require.Len(t, cfg.Pipeline, 2)
}

func TestMarkers(t *testing.T) {
	require.Nil(t, Markers(nil))
	require.Nil(t, Markers(&Address{Name: "Acme"}))
	require.Equal(t, "Account Details", AccountTitle(nil))

	m := Markers(&Address{Name: "Acme", Street: "1 Main St", City: "Springfield", State: "IL"})
	require.Len(t, m, 1)
	require.Equal(t, "Acme", m[0].Title)
	require.Equal(t, "1 Main St, Springfield, IL", m[0].Description)
}
