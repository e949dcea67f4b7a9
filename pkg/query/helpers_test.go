package query

import "github.com/roboricindustries/raycon-display/pkg/display"

func trendTable(start, end string) display.SalesTrendTable {
	return display.SalesTrendTable{Key: "sales-trend-1", Title: "Trend", StartDate: &start, EndDate: &end}
}

func account(id string) display.AccountDetail {
	return display.AccountDetail{Key: "account-" + id + "-1", RecordID: id}
}
