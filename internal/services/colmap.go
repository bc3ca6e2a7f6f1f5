package services

import (
	"log/slog"
	"strings"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// fieldPatterns maps each semantic field to an ordered list of
// case-insensitive substring patterns seen in known export formats.
// Earlier patterns take priority over later ones; within one pattern the
// leftmost matching header cell wins.
var fieldPatterns = map[string][]string{
	"orderNumber":     {"№ заказ", "номер заказ", "заказ №", "order"},
	"product":         {"наименование товар", "товар", "продукт", "напиток", "product"},
	"flavor":          {"вкус", "flavor", "flavour"},
	"paymentResource": {"способ оплат", "тип оплат", "ресурс оплат", "оплат", "payment"},
	"paymentStatus":   {"статус", "status"},
	"machineCode":     {"код автомат", "машин", "автомат", "аппарат", "machine"},
	"address":         {"адрес", "точка", "address"},
	"price":           {"цена", "сумма", "стоимост", "price", "amount"},
	"orderDate":       {"дата", "время", "date", "time"},
}

// criticalFields must all be detected for a detected layout to be trusted.
var criticalFields = []string{"paymentResource", "machineCode", "price", "orderDate"}

// defaultColumnMap is the primary known export layout, used whenever header
// detection cannot be trusted (1-based indices).
var defaultColumnMap = models.ColumnMap{
	OrderNumber:     1,
	Product:         2,
	Flavor:          3,
	PaymentResource: 4,
	PaymentStatus:   5,
	MachineCode:     6,
	Address:         7,
	Price:           8,
	OrderDate:       9,
}

// ColumnMapper infers a semantic-field -> column-index mapping from a header
// row. The output is always fully populated: either detection succeeded for
// every critical field (undetected non-critical fields fall back per-field
// to the default index), or the whole default layout is returned.
type ColumnMapper struct {
	log *slog.Logger
}

func NewColumnMapper(log *slog.Logger) *ColumnMapper {
	return &ColumnMapper{log: log}
}

// Detect maps the header row to a ColumnMap.
func (m *ColumnMapper) Detect(headers []string) models.ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	detected := make(map[string]int, len(fieldPatterns))

	for field, patterns := range fieldPatterns {
		if idx, ok := detectField(normalized, patterns); ok {
			detected[field] = idx
		}
	}

	for _, field := range criticalFields {
		if _, ok := detected[field]; !ok {
			m.log.Warn("column detection incomplete, falling back to default layout",
				"missing_field", field,
				"detected", detected,
				"headers", headers,
			)

			return defaultColumnMap
		}
	}

	return models.ColumnMap{
		OrderNumber:     pick(detected, "orderNumber", defaultColumnMap.OrderNumber),
		Product:         pick(detected, "product", defaultColumnMap.Product),
		Flavor:          pick(detected, "flavor", defaultColumnMap.Flavor),
		PaymentResource: detected["paymentResource"],
		PaymentStatus:   pick(detected, "paymentStatus", defaultColumnMap.PaymentStatus),
		MachineCode:     detected["machineCode"],
		Address:         pick(detected, "address", defaultColumnMap.Address),
		Price:           detected["price"],
		OrderDate:       detected["orderDate"],
	}
}

// detectField returns the 1-based index of the first header cell matching
// the highest-priority pattern.
func detectField(normalized []string, patterns []string) (int, bool) {
	for _, p := range patterns {
		for i, h := range normalized {
			if h != "" && strings.Contains(h, p) {
				return i + 1, true
			}
		}
	}

	return 0, false
}

func pick(detected map[string]int, field string, fallback int) int {
	if idx, ok := detected[field]; ok {
		return idx
	}

	return fallback
}
