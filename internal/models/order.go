package models

import (
	"time"
)

// PaymentMethod is how the customer paid at the machine.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	StatusPaid     PaymentStatus = "paid"
	StatusRefunded PaymentStatus = "refunded"
)

// SalesOrder is one vending-machine transaction as persisted after import.
// MachineCode is the free-text join key from the export; MachineID is only
// set when the code resolved against the machine directory.
type SalesOrder struct {
	ID            int64         `json:"id"`
	OrderNumber   *string       `json:"order_number,omitempty"`
	ProductName   string        `json:"product_name"`
	Flavor        string        `json:"flavor,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	MachineCode   string        `json:"machine_code"`
	MachineID     *int64        `json:"machine_id,omitempty"`
	Address       string        `json:"address,omitempty"`
	Price         float64       `json:"price"`
	OrderDate     time.Time     `json:"order_date"`
	ImportBatchID string        `json:"import_batch_id"`
	ImportedAt    time.Time     `json:"imported_at"`
}

// ColumnMap holds the resolved 1-based spreadsheet column index for each
// semantic field. It is built once per import and never persisted.
type ColumnMap struct {
	OrderNumber     int
	Product         int
	Flavor          int
	PaymentResource int
	PaymentStatus   int
	MachineCode     int
	Address         int
	Price           int
	OrderDate       int
}

// Machine is the external machine-directory entity, read-only here.
type Machine struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ImportFile is the archival metadata written after a successful archive
// of the original upload bytes.
type ImportFile struct {
	ID           int64     `json:"id"`
	BatchID      string    `json:"batch_id"`
	OriginalName string    `json:"original_name"`
	StorageKey   string    `json:"storage_key"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

// ArchiveRef identifies a stored copy of an uploaded file in the archive
// sink. A nil ArchiveRef from the sink means archiving is disabled.
type ArchiveRef struct {
	StorageKey string `json:"storage_key"`
	ETag       string `json:"etag,omitempty"`
}

// ImportSummary is what the caller of an import receives. Skip breakdowns
// by reason are logged server-side only.
type ImportSummary struct {
	Imported         int      `json:"imported"`
	Skipped          int      `json:"skipped"`
	Duplicates       int      `json:"duplicates"`
	Errors           []string `json:"errors"`
	BatchID          string   `json:"batch_id"`
	MachinesFound    int      `json:"machines_found"`
	MachinesNotFound []string `json:"machines_not_found"`
}

// ReconciliationStatus classifies one collection period.
type ReconciliationStatus string

const (
	ReconMatched  ReconciliationStatus = "matched"
	ReconShortage ReconciliationStatus = "shortage"
	ReconOverage  ReconciliationStatus = "overage"
	ReconNoSales  ReconciliationStatus = "no_sales"
)

// CollectionPeriod is one half-open period between two consecutive RECEIVED
// collections of a machine, with cash sales already aggregated into it.
// Produced by the store's windowed query, consumed by the reconciler.
type CollectionPeriod struct {
	MachineCode  string
	MachineName  string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	CollectionID int64
	ActualAmount float64
	CashTotal    float64
	CashOrders   int64
}

// ReconciliationItem is one classified period. Never persisted.
type ReconciliationItem struct {
	MachineCode      string               `json:"machine_code"`
	MachineName      string               `json:"machine_name"`
	PeriodStart      time.Time            `json:"period_start"`
	PeriodEnd        time.Time            `json:"period_end"`
	ExpectedAmount   float64              `json:"expected_amount"`
	ActualAmount     float64              `json:"actual_amount"`
	Difference       float64              `json:"difference"`
	PercentDeviation float64              `json:"percent_deviation"`
	Status           ReconciliationStatus `json:"status"`
	CashOrdersCount  int64                `json:"cash_orders_count"`
	CollectionID     int64                `json:"collection_id"`
}

// ReconciliationSummary is folded over the items of one report.
type ReconciliationSummary struct {
	TotalExpected   float64 `json:"total_expected"`
	TotalActual     float64 `json:"total_actual"`
	TotalDifference float64 `json:"total_difference"`
	Matched         int     `json:"matched"`
	Shortages       int     `json:"shortages"`
	Overages        int     `json:"overages"`
	NoSales         int     `json:"no_sales"`
}

// ReconciliationReport is the full result of one reconciliation call.
type ReconciliationReport struct {
	Items   []ReconciliationItem  `json:"items"`
	Summary ReconciliationSummary `json:"summary"`
}

// DailyTotal is one row of the per-day rollup.
type DailyTotal struct {
	Day        string  `json:"day"`
	CashTotal  float64 `json:"cash_total"`
	CardTotal  float64 `json:"card_total"`
	Total      float64 `json:"total"`
	OrderCount int64   `json:"order_count"`
}

// MachineTotal is one row of the per-machine rollup.
type MachineTotal struct {
	MachineCode   string  `json:"machine_code"`
	CashTotal     float64 `json:"cash_total"`
	CardTotal     float64 `json:"card_total"`
	RefundedTotal float64 `json:"refunded_total"`
	OrderCount    int64   `json:"order_count"`
}

// TopMachine is one row of the top-machines-by-paid-sales rollup.
type TopMachine struct {
	MachineCode string  `json:"machine_code"`
	Total       float64 `json:"total"`
	OrderCount  int64   `json:"order_count"`
}
