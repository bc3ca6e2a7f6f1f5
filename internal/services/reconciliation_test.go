package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

type fakePeriodStore struct {
	periods []models.CollectionPeriod
	err     error

	gotCode string
	gotFrom *time.Time
	gotTo   *time.Time
}

func (f *fakePeriodStore) CollectionPeriods(_ context.Context, machineCode string, from, to *time.Time) ([]models.CollectionPeriod, error) {
	f.gotCode = machineCode
	f.gotFrom = from
	f.gotTo = to

	return f.periods, f.err
}

func period(cashTotal, actual float64, orders int64) models.CollectionPeriod {
	return models.CollectionPeriod{
		MachineCode:  "A01",
		MachineName:  "Office",
		PeriodStart:  time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2025, 1, 17, 9, 0, 0, 0, time.UTC),
		CollectionID: 42,
		ActualAmount: actual,
		CashTotal:    cashTotal,
		CashOrders:   orders,
	}
}

func TestReconciler_Matched(t *testing.T) {
	store := &fakePeriodStore{periods: []models.CollectionPeriod{period(45000, 45000, 300)}}
	r := NewReconciler(store, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)
	require.Len(t, report.Items, 1)

	item := report.Items[0]
	assert.Equal(t, models.ReconMatched, item.Status)
	assert.Equal(t, 45000.0, item.ExpectedAmount)
	assert.Equal(t, 45000.0, item.ActualAmount)
	assert.Equal(t, 0.0, item.Difference)
	assert.Equal(t, 0.0, item.PercentDeviation)
	assert.Equal(t, int64(300), item.CashOrdersCount)
	assert.Equal(t, 1, report.Summary.Matched)
}

func TestReconciler_Shortage(t *testing.T) {
	store := &fakePeriodStore{periods: []models.CollectionPeriod{period(60000, 45000, 400)}}
	r := NewReconciler(store, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)

	item := report.Items[0]
	assert.Equal(t, models.ReconShortage, item.Status)
	assert.Equal(t, 15000.0, item.Difference)
	assert.Equal(t, 25.0, item.PercentDeviation)
	assert.Equal(t, 1, report.Summary.Shortages)
}

func TestReconciler_Overage(t *testing.T) {
	store := &fakePeriodStore{periods: []models.CollectionPeriod{period(30000, 45000, 200)}}
	r := NewReconciler(store, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)

	item := report.Items[0]
	assert.Equal(t, models.ReconOverage, item.Status)
	assert.Equal(t, -15000.0, item.Difference)
	assert.Equal(t, -50.0, item.PercentDeviation)
	assert.Equal(t, 1, report.Summary.Overages)
}

func TestReconciler_NoSales(t *testing.T) {
	store := &fakePeriodStore{periods: []models.CollectionPeriod{period(0, 0, 0)}}
	r := NewReconciler(store, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)

	item := report.Items[0]
	assert.Equal(t, models.ReconNoSales, item.Status)
	assert.Equal(t, 0.0, item.PercentDeviation)
	assert.Equal(t, 1, report.Summary.NoSales)
}

func TestReconciler_CollectedWithNoSalesIsOverage(t *testing.T) {
	// Money in the cashbox with zero recorded sales is an overage, not
	// no_sales: the classification needs both sides to be zero.
	store := &fakePeriodStore{periods: []models.CollectionPeriod{period(0, 500, 0)}}
	r := NewReconciler(store, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.ReconOverage, report.Items[0].Status)
}

func TestReconciler_SummaryFold(t *testing.T) {
	store := &fakePeriodStore{periods: []models.CollectionPeriod{
		period(45000, 45000, 300),
		period(60000, 45000, 400),
		period(30000, 45000, 200),
		period(0, 0, 0),
	}}
	r := NewReconciler(store, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)

	assert.Len(t, report.Items, 4)
	assert.Equal(t, 1, report.Summary.Matched)
	assert.Equal(t, 1, report.Summary.Shortages)
	assert.Equal(t, 1, report.Summary.Overages)
	assert.Equal(t, 1, report.Summary.NoSales)
	assert.Equal(t, 135000.0, report.Summary.TotalExpected)
	assert.Equal(t, 135000.0, report.Summary.TotalActual)
	assert.Equal(t, 0.0, report.Summary.TotalDifference)
}

func TestReconciler_RoundsFractionalAmounts(t *testing.T) {
	store := &fakePeriodStore{periods: []models.CollectionPeriod{period(100.555, 100.0, 3)}}
	r := NewReconciler(store, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)

	item := report.Items[0]
	assert.Equal(t, Round2(100.555), item.ExpectedAmount)
	assert.Equal(t, Round2(item.ExpectedAmount-100.0), item.Difference)
}

func TestReconciler_PassesFiltersToStore(t *testing.T) {
	store := &fakePeriodStore{}
	r := NewReconciler(store, testBusinessTime(t))

	_, err := r.Reconcile(context.Background(), "A01", "2025-01-01", "2025-01-31")
	require.NoError(t, err)

	assert.Equal(t, "A01", store.gotCode)
	require.NotNil(t, store.gotFrom)
	require.NotNil(t, store.gotTo)
	assert.True(t, store.gotFrom.Before(*store.gotTo))
}

func TestReconciler_InvalidDateRange(t *testing.T) {
	r := NewReconciler(&fakePeriodStore{}, testBusinessTime(t))

	_, err := r.Reconcile(context.Background(), "", "январь", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestReconciler_StoreFailure(t *testing.T) {
	store := &fakePeriodStore{err: fmt.Errorf("timeout")}
	r := NewReconciler(store, testBusinessTime(t))

	_, err := r.Reconcile(context.Background(), "", "", "")
	assert.ErrorContains(t, err, "loading collection periods")
}

func TestReconciler_EmptyReport(t *testing.T) {
	r := NewReconciler(&fakePeriodStore{}, testBusinessTime(t))

	report, err := r.Reconcile(context.Background(), "", "", "")
	require.NoError(t, err)

	assert.NotNil(t, report.Items)
	assert.Empty(t, report.Items)
	assert.Equal(t, 0.0, report.Summary.TotalExpected)
}
