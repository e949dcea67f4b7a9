package widgets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMatrix(t *testing.T) {
	threshold := 1000.0
	m := BuildMatrix([][]any{
		{"Type", "2024-01", "2024-02"},
		{"New Customer", 1500.0, int64(250)},
		{"Existing", nil, 999.5},
	}, &threshold)

	require.Equal(t, []string{"Type", "2024-01", "2024-02"}, m.Headers)
	require.Len(t, m.Rows, 2)
	require.Equal(t, "row-1", m.Rows[0].ID)

	head := m.Rows[0].Cells[0]
	require.True(t, head.IsHeader)
	require.Equal(t, "cell-1-0", head.ID)
	require.Equal(t, "Row Header", head.Label)
	require.Equal(t, "New Customer", head.Formatted)
	require.Equal(t, "", head.ColumnValue)

	c := m.Rows[0].Cells[1]
	require.Equal(t, "1,500", c.Formatted)
	require.Equal(t, "2024-01", c.Label)
	require.Equal(t, "2024-01", c.ColumnValue)
	require.Equal(t, "New Customer", c.RowValue)
	require.True(t, c.Highlighted)

	require.False(t, m.Rows[0].Cells[2].Highlighted)
	require.Equal(t, "250", m.Rows[0].Cells[2].Formatted)
	require.Equal(t, "", m.Rows[1].Cells[1].Formatted)
	require.False(t, m.Rows[1].Cells[1].Highlighted)
	require.Equal(t, "999.50", m.Rows[1].Cells[2].Formatted)
}

func TestBuildMatrixZeroThresholdHighlightsNothing(t *testing.T) {
	zero := 0.0
	m := BuildMatrix([][]any{{"Type", "Q1"}, {"New", 10.0}}, &zero)
	require.False(t, m.Rows[0].Cells[1].Highlighted)

	require.True(t, BuildMatrix(nil, nil).Empty())
	require.Empty(t, BuildMatrix([][]any{{"Type"}}, nil).Rows)
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{0.0, "0"},
		{1234567.0, "1,234,567"},
		{int64(-4200), "-4,200"},
		{1234.5, "1,234.50"},
		{0.456, "0.46"},
		{"n/a", "n/a"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatValue(tc.in), "%v", tc.in)
	}
}

func TestBuildPieChart(t *testing.T) {
	pc := BuildPieChart(ChartData{
		Labels: []string{"New", "Renewal", "Upsell"},
		Values: []float64{50, 30, 20},
		Total:  100,
	}, "pastel")

	require.Len(t, pc.Slices, 3)
	require.Equal(t, "#FFB3BA", pc.Slices[0].Color)
	require.Equal(t, "#FFDFBA", pc.Slices[1].Color)
	require.Equal(t, 50.0, pc.Slices[0].Percent)
	require.Equal(t, "Renewal: 30 (30.0%)", pc.Slices[1].Tooltip())
	require.Equal(t, "100", pc.FormattedTotal)

	pc = BuildPieChart(ChartData{Labels: []string{"a", "b"}, Values: []float64{1, 2}, Total: 3}, "neon")
	require.Equal(t, "#3366CC", pc.Slices[0].Color)
	require.Equal(t, 33.3, pc.Slices[0].Percent)

	require.Empty(t, BuildPieChart(ChartData{}, "default").Slices)
}

func TestPieChartColoursCycle(t *testing.T) {
	labels := make([]string, 9)
	values := make([]float64, 9)
	for i := range labels {
		labels[i] = string(rune('a' + i))
		values[i] = 1
	}
	pc := BuildPieChart(ChartData{Labels: labels, Values: values, Total: 9}, "bright")
	require.Equal(t, pc.Slices[0].Color, pc.Slices[7].Color)
}

func TestBuildMetric(t *testing.T) {
	m := BuildMetric("Revenue Won", MetricResult{})
	require.False(t, m.HasData)

	v := 125000.0
	m = BuildMetric("Revenue Won", MetricResult{Value: &v})
	require.True(t, m.HasData)
	require.Equal(t, "125,000", m.Formatted)

	m = BuildMetric("Pipeline", MetricResult{Value: &v, FormattedValue: "$125K"})
	require.Equal(t, "$125K", m.Formatted)
}

func TestProcessActivities(t *testing.T) {
	items := ProcessActivities([]Activity{
		{ID: "00T1", Type: "task", Priority: "High", ActivityDate: "2024-03-05"},
		{ID: "00U1", Type: "event", Priority: "Normal", ActivityDate: "2024-03-06T15:00:00Z"},
		{ID: "02s1", Type: "email"},
		{ID: "x", Type: "call", ActivityDate: "someday"},
	})
	require.Len(t, items, 4)

	require.True(t, items[0].IsTask)
	require.True(t, items[0].IsHighPriority)
	require.Equal(t, "Mar 5, 2024", items[0].FormattedDate)
	require.Equal(t, "activity-details-00T1", items[0].DetailsID)

	require.True(t, items[1].IsEvent)
	require.False(t, items[1].IsHighPriority)
	require.Equal(t, "Mar 6, 2024", items[1].FormattedDate)

	require.True(t, items[2].IsEmail)
	require.Equal(t, "", items[2].FormattedDate)

	require.False(t, items[3].IsTask || items[3].IsEvent || items[3].IsEmail)
	require.Equal(t, "Invalid Date", items[3].FormattedDate)
}
