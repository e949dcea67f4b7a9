package display

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	uiv1 "github.com/roboricindustries/raycon-display/pkg/schemas/uiinstruction/v1"
)

// Source tells where a parsed parameter value came from.
type Source int

const (
	SourceDefault Source = iota
	SourceJSON
	SourceRaw
)

func (s Source) String() string {
	switch s {
	case SourceJSON:
		return "json"
	case SourceRaw:
		return "raw"
	default:
		return "default"
	}
}

// Result is the outcome of best-effort parameter parsing. OK is false when no
// usable value could be resolved; Value then holds the default.
type Result[T any] struct {
	Value  T
	Source Source
	OK     bool
}

type SalesTrendSettings struct {
	Title     string
	StartDate *string
	EndDate   *string
}

const maxDisplayLimit = math.MaxInt32

// ParseSalesTrend resolves title/startDate/endDate. Missing or malformed
// parameters fall back to DefaultSalesTrendTitle and no dates.
func ParseSalesTrend(raw *string) Result[SalesTrendSettings] {
	def := SalesTrendSettings{Title: DefaultSalesTrendTitle}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Result[SalesTrendSettings]{Value: def, Source: SourceDefault, OK: true}
	}
	var p uiv1.SalesTrendParams
	if err := json.Unmarshal([]byte(*raw), &p); err != nil {
		return Result[SalesTrendSettings]{Value: def, Source: SourceDefault}
	}
	out := def
	if p.Title != "" {
		out.Title = p.Title
	}
	out.StartDate = nonEmpty(p.StartDate)
	out.EndDate = nonEmpty(p.EndDate)
	return Result[SalesTrendSettings]{Value: out, Source: SourceJSON, OK: true}
}

// ParseCount resolves the display bound from {"count": n}. The raw string is
// read as a leading integer only when it is not JSON at all; JSON that has no
// usable count (including a bare number like "5") resolves to 1. The result is
// floored and clamped to at least 1.
func ParseCount(raw *string) Result[int] {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Result[int]{Value: 1, Source: SourceDefault, OK: true}
	}
	if !json.Valid([]byte(*raw)) {
		if n, ok := leadingInt(*raw); ok {
			return Result[int]{Value: clampCount(float64(n)), Source: SourceRaw, OK: true}
		}
		return Result[int]{Value: 1, Source: SourceDefault, OK: true}
	}
	var p uiv1.CountParams
	if err := json.Unmarshal([]byte(*raw), &p); err == nil {
		if v, ok := number(p.Count); ok {
			return Result[int]{Value: clampCount(v), Source: SourceJSON, OK: true}
		}
	}
	return Result[int]{Value: 1, Source: SourceDefault, OK: true}
}

// ParseThreshold resolves {"threshold": n}. Parameters that are not JSON
// are read as a leading decimal number ("250.5 USD" is 250.5). OK is false
// when neither yields a finite number.
func ParseThreshold(raw *string) Result[float64] {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Result[float64]{}
	}
	if !json.Valid([]byte(*raw)) {
		if v, ok := leadingFloat(*raw); ok {
			return Result[float64]{Value: v, Source: SourceRaw, OK: true}
		}
		return Result[float64]{}
	}
	var p uiv1.ThresholdParams
	if err := json.Unmarshal([]byte(*raw), &p); err == nil {
		if v, ok := number(p.Threshold); ok {
			return Result[float64]{Value: v, Source: SourceJSON, OK: true}
		}
	}
	return Result[float64]{}
}

// number reads a JSON number or numeric string.
func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// leadingInt parses an optional sign and the leading decimal digits of s,
// ignoring anything after them ("12px" is 12).
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		n = maxDisplayLimit
	}
	if neg {
		n = -n
	}
	return n, true
}

// leadingFloat parses an optional sign, digits and an optional fraction at the
// start of s.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampCount(v float64) int {
	v = math.Floor(v)
	if v < 1 {
		return 1
	}
	if v > maxDisplayLimit {
		return maxDisplayLimit
	}
	return int(v)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
