package widgets

// MetricResult is a single aggregate. Value is nil when no row matched.
type MetricResult struct {
	Value          *float64 `json:"value"`
	FormattedValue string   `json:"formattedValue"`
}

type Metric struct {
	Title     string
	Formatted string
	HasData   bool
}

// BuildMetric prefers the service's own formatting and falls back to
// FormatValue.
func BuildMetric(title string, r MetricResult) Metric {
	m := Metric{Title: title}
	if r.Value == nil {
		return m
	}
	m.HasData = true
	m.Formatted = r.FormattedValue
	if m.Formatted == "" {
		m.Formatted = FormatValue(*r.Value)
	}
	return m
}
