package display

// Kind selects which child view renders a descriptor.
type Kind string

const (
	KindAccountDetail   Kind = "AccountDetail"
	KindSalesTrendTable Kind = "SalesTrendTable"
)

const DefaultSalesTrendTitle = "Sales Trend"

// Descriptor is one entry of the display stack. The set of implementations
// is closed: AccountDetail and SalesTrendTable.
type Descriptor interface {
	Kind() Kind
	// Identity is the render key; it never changes once the descriptor is pushed.
	Identity() string
	sealed()
}

type AccountDetail struct {
	Key      string `json:"key"`
	RecordID string `json:"recordId"`
}

func (AccountDetail) Kind() Kind         { return KindAccountDetail }
func (a AccountDetail) Identity() string { return a.Key }
func (AccountDetail) sealed()            {}

type SalesTrendTable struct {
	Key                string   `json:"key"`
	Title              string   `json:"title"`
	StartDate          *string  `json:"startDate"`
	EndDate            *string  `json:"endDate"`
	RecordID           *string  `json:"recordId"`
	HighlightThreshold *float64 `json:"highlightThreshold,omitempty"`
}

func (SalesTrendTable) Kind() Kind         { return KindSalesTrendTable }
func (s SalesTrendTable) Identity() string { return s.Key }
func (SalesTrendTable) sealed()            {}

// WithHighlightThreshold returns a copy carrying v; the key is kept.
func (s SalesTrendTable) WithHighlightThreshold(v float64) SalesTrendTable {
	s.HighlightThreshold = &v
	return s
}
