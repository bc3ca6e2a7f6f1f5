package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// RowSkip says why a row was silently dropped. Skips are not errors: they
// are counted per kind and logged, never surfaced to the caller.
type RowSkip int

const (
	SkipNone RowSkip = iota
	// SkipPaymentResource means the payment-resource cell did not map to
	// cash or card (service operations like "send", "vip", "test").
	SkipPaymentResource
	// SkipMachineCode means the machine-code cell was empty.
	SkipMachineCode
)

// RowError is a per-row parse failure tied to its spreadsheet row number.
type RowError struct {
	Row     int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

var cashMarkers = []string{"налич", "cash", "купюр", "монет"}

var cardMarkers = []string{"карт", "безнал", "custom", "card", "qr"}

var refundMarkers = []string{"возврат", "refund", "отмен"}

// RowNormalizer converts raw spreadsheet rows into SalesOrders using a
// resolved ColumnMap and a per-import snapshot of the machine directory.
// The snapshot is rebuilt for every import; it is never a process-global
// cache.
type RowNormalizer struct {
	columns  models.ColumnMap
	machines map[string]int64
	dates    *BusinessTime
	matched  map[string]struct{}
	notFound map[string]struct{}
}

func NewRowNormalizer(columns models.ColumnMap, machines map[string]int64, dates *BusinessTime) *RowNormalizer {
	return &RowNormalizer{
		columns:  columns,
		machines: machines,
		dates:    dates,
		matched:  make(map[string]struct{}),
		notFound: make(map[string]struct{}),
	}
}

// Normalize turns one row into exactly one of: an order, a skip, or a row
// error. A panic inside row processing is converted into a row error so a
// single malformed row can never abort the batch.
func (n *RowNormalizer) Normalize(row []string, rowNum int) (order *models.SalesOrder, skip RowSkip, rowErr *RowError) {
	defer func() {
		if r := recover(); r != nil {
			order = nil
			skip = SkipNone
			rowErr = &RowError{Row: rowNum, Message: fmt.Sprintf("unexpected row failure: %v", r)}
		}
	}()

	method, ok := mapPaymentMethod(cell(row, n.columns.PaymentResource))
	if !ok {
		return nil, SkipPaymentResource, nil
	}

	machineCode := strings.TrimSpace(cell(row, n.columns.MachineCode))
	if machineCode == "" {
		return nil, SkipMachineCode, nil
	}

	orderDate, err := n.dates.ParseTimestamp(cell(row, n.columns.OrderDate))
	if err != nil {
		return nil, SkipNone, &RowError{Row: rowNum, Message: err.Error()}
	}

	o := &models.SalesOrder{
		ProductName:   strings.TrimSpace(cell(row, n.columns.Product)),
		Flavor:        strings.TrimSpace(cell(row, n.columns.Flavor)),
		PaymentMethod: method,
		PaymentStatus: mapPaymentStatus(cell(row, n.columns.PaymentStatus)),
		MachineCode:   machineCode,
		Address:       strings.TrimSpace(cell(row, n.columns.Address)),
		Price:         ParsePrice(cell(row, n.columns.Price)),
		OrderDate:     orderDate,
	}

	if num := strings.TrimSpace(cell(row, n.columns.OrderNumber)); num != "" {
		o.OrderNumber = &num
	}

	// The raw code stays on the order either way: reconciliation joins on
	// the textual code, not the foreign key.
	if id, ok := n.machines[strings.ToLower(machineCode)]; ok {
		o.MachineID = &id
		n.matched[strings.ToLower(machineCode)] = struct{}{}
	} else {
		n.notFound[machineCode] = struct{}{}
	}

	return o, SkipNone, nil
}

// MatchedMachines is the count of distinct machine codes that resolved.
func (n *RowNormalizer) MatchedMachines() int {
	return len(n.matched)
}

// UnresolvedMachines lists the machine codes that failed resolution, sorted.
func (n *RowNormalizer) UnresolvedMachines() []string {
	codes := make([]string, 0, len(n.notFound))
	for code := range n.notFound {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}

// ParsePrice parses a monetary cell. Numeric text is used directly; noisy
// text has commas normalized to dots and everything except digits, dots and
// minus stripped. Unparsable values become 0 rather than rejecting the row.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Round2(v)
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',':
			return '.'
		default:
			return -1
		}
	}, s)

	// Thousand-separator dots: keep only the last dot as the decimal point.
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return Round2(v)
}

// Card markers are checked first: "безналичный" contains the cash marker
// "налич", so the cash pass would claim every cashless row.
func mapPaymentMethod(resource string) (models.PaymentMethod, bool) {
	resource = strings.ToLower(strings.TrimSpace(resource))

	for _, marker := range cardMarkers {
		if strings.Contains(resource, marker) {
			return models.PaymentCard, true
		}
	}

	for _, marker := range cashMarkers {
		if strings.Contains(resource, marker) {
			return models.PaymentCash, true
		}
	}

	return "", false
}

func mapPaymentStatus(status string) models.PaymentStatus {
	status = strings.ToLower(strings.TrimSpace(status))

	for _, marker := range refundMarkers {
		if strings.Contains(status, marker) {
			return models.StatusRefunded
		}
	}

	return models.StatusPaid
}

// cell returns the trimmed-by-caller raw value of a 1-based column, or ""
// when the row is shorter than the map expects.
func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}

	return row[col-1]
}
