// Package query is the data-access side of the dashboard widgets: matrix,
// chart and metric aggregates plus the account lookups the panels need.
package query

import (
	"context"
	"errors"

	"github.com/roboricindustries/raycon-display/pkg/widgets"
)

var (
	ErrUnknownObject   = errors.New("unknown object")
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrUnknownFunction = errors.New("unknown aggregate function")
)

// Service answers widget data requests.
type Service interface {
	Matrix(ctx context.Context, req MatrixRequest) ([][]any, error)
	PieChart(ctx context.Context, req ChartRequest) (widgets.ChartData, error)
	Aggregate(ctx context.Context, req MetricRequest) (widgets.MetricResult, error)
	Activities(ctx context.Context, accountID string) ([]widgets.Activity, error)
	// Account returns nil, nil when the record does not exist.
	Account(ctx context.Context, accountID string) (*widgets.Address, error)
}

type MatrixRequest struct {
	ObjectName         string
	RowField           string
	ColumnField        string
	AggregateField     string
	AggregateFunction  string
	RowDateGrouping    string
	ColumnDateGrouping string
	Filters            widgets.Filters
}

type ChartRequest struct {
	ObjectName        string
	GroupByField      string
	AggregateField    string
	AggregateFunction string
	Filters           widgets.Filters
	MaxSlices         int
}

type MetricRequest struct {
	ObjectName        string
	AggregateField    string
	AggregateFunction string
	Filters           widgets.Filters
}

// SalesTrendMatrix is monthly won-opportunity revenue by type within the
// table's date range.
func SalesTrendMatrix(cfg widgets.SalesTrendConfig) MatrixRequest {
	filters := append(widgets.Filters{{FieldName: "IsWon", Operator: "=", Value: "true"}}, cfg.Filters...)
	return MatrixRequest{
		ObjectName:         "Opportunity",
		RowField:           "Type",
		ColumnField:        "CloseDate",
		AggregateField:     "Amount",
		AggregateFunction:  "SUM",
		ColumnDateGrouping: "MONTH",
		Filters:            filters,
	}
}

// OpportunityTypeChart counts an account's opportunities by type.
func OpportunityTypeChart(cfg widgets.AccountConfig) ChartRequest {
	return ChartRequest{
		ObjectName:        "Opportunity",
		GroupByField:      "Type",
		AggregateField:    "Id",
		AggregateFunction: "COUNT",
		Filters:           cfg.OpportunityByType,
		MaxSlices:         5,
	}
}

func RevenueWonMetric(cfg widgets.AccountConfig) MetricRequest {
	return MetricRequest{ObjectName: "Opportunity", AggregateField: "Amount", AggregateFunction: "SUM", Filters: cfg.RevenueWon}
}

func PipelineMetric(cfg widgets.AccountConfig) MetricRequest {
	return MetricRequest{ObjectName: "Opportunity", AggregateField: "Amount", AggregateFunction: "SUM", Filters: cfg.Pipeline}
}
