package uiinstruction

import "encoding/json"

// SalesTrendParams is the Parameters__c shape for showSalesTrendTable.
type SalesTrendParams struct {
	Title     string `json:"title,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// CountParams is the Parameters__c shape for setMaxDisplayCount.
// Count is kept raw because publishers send numbers, strings and nulls.
type CountParams struct {
	Count json.RawMessage `json:"count,omitempty"`
}

// ThresholdParams is the Parameters__c shape for setHighlightThreshold.
type ThresholdParams struct {
	Threshold json.RawMessage `json:"threshold,omitempty"`
}
