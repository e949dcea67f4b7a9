package widgets

import "strconv"

// ChartData is a grouped aggregate as returned by the query service.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Total  float64   `json:"total"`
}

var palettes = map[string][]string{
	"default": {
		"#3366CC", "#DC3912", "#FF9900", "#109618", "#990099",
		"#3B3EAC", "#0099C6", "#DD4477", "#66AA00", "#B82E2E",
		"#316395", "#994499", "#22AA99", "#AAAA11", "#6633CC",
	},
	"pastel": {
		"#FFB3BA", "#FFDFBA", "#FFFFBA", "#BAFFC9", "#BAE1FF",
		"#FFC6FF", "#DCDCDC", "#C1E1C1", "#C4A484", "#B5EAD7",
		"#E2F0CB", "#FFDAC1", "#FF9AA2", "#B5B9FF", "#85E3FF",
	},
	"bright": {
		"#FF5733", "#33FF57", "#3357FF", "#FF33A8", "#33FFF5",
		"#FFD433", "#8C33FF",
	},
	"dark": {
		"#1A237E", "#311B92", "#4A148C", "#880E4F", "#B71C1C",
		"#004D40", "#0D47A1", "#1B5E20", "#827717", "#E65100",
		"#212121", "#263238", "#3E2723", "#BF360C", "#01579B",
	},
}

type PieChart struct {
	Slices         []Slice
	Total          float64
	FormattedTotal string
}

type Slice struct {
	Label     string
	Value     float64
	Formatted string
	Color     string
	// Percent of Total, rounded to one decimal.
	Percent float64
}

// Tooltip is "label: value (pct%)".
func (s Slice) Tooltip() string {
	return s.Label + ": " + s.Formatted + " (" + strconv.FormatFloat(s.Percent, 'f', 1, 64) + "%)"
}

// BuildPieChart assigns palette colours in order, cycling when there are more
// slices than colours. Unknown palette names use "default".
func BuildPieChart(data ChartData, palette string) PieChart {
	if len(data.Labels) == 0 {
		return PieChart{}
	}
	colors, ok := palettes[palette]
	if !ok {
		colors = palettes["default"]
	}
	pc := PieChart{
		Total:          data.Total,
		FormattedTotal: FormatValue(data.Total),
		Slices:         make([]Slice, 0, len(data.Labels)),
	}
	for i, label := range data.Labels {
		var v float64
		if i < len(data.Values) {
			v = data.Values[i]
		}
		s := Slice{
			Label:     label,
			Value:     v,
			Formatted: FormatValue(v),
			Color:     colors[i%len(colors)],
		}
		if data.Total != 0 {
			p, _ := strconv.ParseFloat(strconv.FormatFloat(v/data.Total*100, 'f', 1, 64), 64)
			s.Percent = p
		}
		pc.Slices = append(pc.Slices, s)
	}
	return pc
}
