package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestColumnMapper_DetectStandardLayout(t *testing.T) {
	mapper := NewColumnMapper(testLogger())

	headers := []string{
		"№ заказа", "Товар", "Вкус", "Способ оплаты", "Статус оплаты",
		"Код автомата", "Адрес", "Сумма", "Дата заказа",
	}

	cm := mapper.Detect(headers)

	assert.Equal(t, 1, cm.OrderNumber)
	assert.Equal(t, 2, cm.Product)
	assert.Equal(t, 3, cm.Flavor)
	assert.Equal(t, 4, cm.PaymentResource)
	assert.Equal(t, 5, cm.PaymentStatus)
	assert.Equal(t, 6, cm.MachineCode)
	assert.Equal(t, 7, cm.Address)
	assert.Equal(t, 8, cm.Price)
	assert.Equal(t, 9, cm.OrderDate)
}

func TestColumnMapper_DetectionIsOrderIndependent(t *testing.T) {
	mapper := NewColumnMapper(testLogger())

	// Same semantics, physically reordered and renamed.
	headers := []string{"Дата и время", "Аппарат", "Цена", "Тип оплаты", "Товар"}

	cm := mapper.Detect(headers)

	assert.Equal(t, 1, cm.OrderDate)
	assert.Equal(t, 2, cm.MachineCode)
	assert.Equal(t, 3, cm.Price)
	assert.Equal(t, 4, cm.PaymentResource)
	assert.Equal(t, 5, cm.Product)
}

func TestColumnMapper_PaymentPatternPriority(t *testing.T) {
	mapper := NewColumnMapper(testLogger())

	// "Статус оплаты" contains the generic "оплат" marker but sits before
	// the real payment column; the more specific pattern must win.
	headers := []string{"Статус оплаты", "Способ оплаты", "Код автомата", "Цена", "Дата"}

	cm := mapper.Detect(headers)

	assert.Equal(t, 2, cm.PaymentResource)
	assert.Equal(t, 1, cm.PaymentStatus)
}

func TestColumnMapper_CriticalMissFallsBackWholesale(t *testing.T) {
	mapper := NewColumnMapper(testLogger())

	// No price header anywhere: the entire default layout must be used,
	// even though other critical fields were detectable.
	headers := []string{"Дата заказа", "Код автомата", "Способ оплаты", "Товар"}

	cm := mapper.Detect(headers)

	assert.Equal(t, defaultColumnMap, cm)
}

func TestColumnMapper_NonCriticalMissFallsBackPerField(t *testing.T) {
	mapper := NewColumnMapper(testLogger())

	// All critical fields resolve; flavor and address do not.
	headers := []string{"Способ оплаты", "Код автомата", "Цена", "Дата заказа"}

	cm := mapper.Detect(headers)

	assert.Equal(t, 1, cm.PaymentResource)
	assert.Equal(t, 2, cm.MachineCode)
	assert.Equal(t, 3, cm.Price)
	assert.Equal(t, 4, cm.OrderDate)
	assert.Equal(t, defaultColumnMap.Flavor, cm.Flavor)
	assert.Equal(t, defaultColumnMap.Address, cm.Address)
}

func TestColumnMapper_EnglishHeaders(t *testing.T) {
	mapper := NewColumnMapper(testLogger())

	headers := []string{"Order", "Product", "Payment", "Machine", "Price", "Date"}

	cm := mapper.Detect(headers)

	assert.Equal(t, 3, cm.PaymentResource)
	assert.Equal(t, 4, cm.MachineCode)
	assert.Equal(t, 5, cm.Price)
	assert.Equal(t, 6, cm.OrderDate)
}
