package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// AggregateStore serves the rollup queries. They share the payment
// method/status filtering conventions of reconciliation.
type AggregateStore interface {
	DailyTotals(ctx context.Context, from, to *time.Time) ([]models.DailyTotal, error)
	TopMachines(ctx context.Context, limit int, from, to *time.Time) ([]models.TopMachine, error)
	MachineTotals(ctx context.Context, from, to *time.Time) ([]models.MachineTotal, error)
}

const defaultTopMachines = 10

// Aggregates exposes the derived rollup views. Date boundaries and rounding
// are identical to reconciliation so the numbers stay comparable.
type Aggregates struct {
	store AggregateStore
	dates *BusinessTime
}

func NewAggregates(store AggregateStore, dates *BusinessTime) *Aggregates {
	return &Aggregates{store: store, dates: dates}
}

func (a *Aggregates) DailyTotals(ctx context.Context, from, to string) ([]models.DailyTotal, error) {
	lo, hi, err := a.dates.Range(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := a.store.DailyTotals(ctx, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("loading daily totals: %w", err)
	}

	for i := range rows {
		rows[i].CashTotal = Round2(rows[i].CashTotal)
		rows[i].CardTotal = Round2(rows[i].CardTotal)
		rows[i].Total = Round2(rows[i].Total)
	}

	return rows, nil
}

func (a *Aggregates) TopMachines(ctx context.Context, limit int, from, to string) ([]models.TopMachine, error) {
	if limit <= 0 {
		limit = defaultTopMachines
	}

	lo, hi, err := a.dates.Range(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := a.store.TopMachines(ctx, limit, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("loading top machines: %w", err)
	}

	for i := range rows {
		rows[i].Total = Round2(rows[i].Total)
	}

	return rows, nil
}

func (a *Aggregates) MachineTotals(ctx context.Context, from, to string) ([]models.MachineTotal, error) {
	lo, hi, err := a.dates.Range(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := a.store.MachineTotals(ctx, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("loading machine totals: %w", err)
	}

	for i := range rows {
		rows[i].CashTotal = Round2(rows[i].CashTotal)
		rows[i].CardTotal = Round2(rows[i].CardTotal)
		rows[i].RefundedTotal = Round2(rows[i].RefundedTotal)
	}

	return rows, nil
}
