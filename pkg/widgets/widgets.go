// Package widgets turns display descriptors into the configuration each
// child view hands to the data-query service: filter conditions, normalised
// dates and highlight rules.
package widgets

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/roboricindustries/raycon-display/pkg/display"
)

// Filter is one condition understood by the data-query service.
type Filter struct {
	FieldName string `json:"fieldName"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
}

type Filters []Filter

// JSON encodes the filters the way the query service expects them. An empty
// set encodes as "[]".
func (f Filters) JSON() string {
	if len(f) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]Filter(f)); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// FormatDate normalises s to YYYY-MM-DD, or "" when it is not a date.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// SalesTrendConfig is the view configuration for a SalesTrendTable.
type SalesTrendConfig struct {
	Key                string
	Title              string
	StartDate          string
	EndDate            string
	RecordID           string
	HighlightThreshold *float64
	Filters            Filters
}

// SalesTrend builds the table configuration. The CloseDate range is only
// applied when both dates are present and valid.
func SalesTrend(d display.SalesTrendTable) SalesTrendConfig {
	cfg := SalesTrendConfig{
		Key:                d.Key,
		Title:              d.Title,
		StartDate:          formatPtr(d.StartDate),
		EndDate:            formatPtr(d.EndDate),
		HighlightThreshold: d.HighlightThreshold,
	}
	if d.RecordID != nil {
		cfg.RecordID = *d.RecordID
	}
	if cfg.Title == "" {
		cfg.Title = display.DefaultSalesTrendTitle
	}
	cfg.Filters = Filters{}
	if cfg.StartDate != "" && cfg.EndDate != "" {
		cfg.Filters = Filters{
			{FieldName: "CloseDate", Operator: ">=", Value: cfg.StartDate},
			{FieldName: "CloseDate", Operator: "<=", Value: cfg.EndDate},
		}
	}
	return cfg
}

// Matrix shapes the table's query result with the configured highlight
// threshold.
func (c SalesTrendConfig) Matrix(data [][]any) Matrix {
	return BuildMatrix(data, c.HighlightThreshold)
}

// AccountConfig is the view configuration for an AccountDetail panel and the
// metric widgets nested in it.
type AccountConfig struct {
	Key               string
	RecordID          string
	OpportunityByType Filters
	RevenueWon        Filters
	Pipeline          Filters
}

func Account(d display.AccountDetail) AccountConfig {
	byAccount := Filter{FieldName: "AccountId", Operator: "=", Value: d.RecordID}
	return AccountConfig{
		Key:               d.Key,
		RecordID:          d.RecordID,
		OpportunityByType: Filters{byAccount},
		RevenueWon:        Filters{byAccount, {FieldName: "IsWon", Operator: "=", Value: "true"}},
		Pipeline:          Filters{byAccount, {FieldName: "IsClosed", Operator: "=", Value: "false"}},
	}
}

// Address is a billing address as returned by the record lookup.
type Address struct {
	Name       string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// MapMarker is one pin for the account map.
type MapMarker struct {
	Title       string
	Description string
	Location    Address
}

// Markers returns the map pin for a, or nothing when there is no street.
func Markers(a *Address) []MapMarker {
	if a == nil || a.Street == "" {
		return nil
	}
	return []MapMarker{{
		Title:       a.Name,
		Description: strings.Join([]string{a.Street, a.City, a.State}, ", "),
		Location:    *a,
	}}
}

// AccountTitle falls back to a generic heading until the record is loaded.
func AccountTitle(a *Address) string {
	if a == nil || a.Name == "" {
		return "Account Details"
	}
	return a.Name
}

func formatPtr(s *string) string {
	if s == nil {
		return ""
	}
	return FormatDate(*s)
}
