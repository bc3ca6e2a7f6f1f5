package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// PeriodStore yields collection periods with cash sales already aggregated
// in. The windowed pairing runs inside the store as one relational pass;
// issuing a query per collection would be the classic N+1 shape this design
// avoids.
type PeriodStore interface {
	CollectionPeriods(ctx context.Context, machineCode string, from, to *time.Time) ([]models.CollectionPeriod, error)
}

// Reconciler classifies collection periods against cash sales. It performs
// no writes: identical inputs always yield identical output, so it is safe
// to call repeatedly for alerting and export.
type Reconciler struct {
	periods PeriodStore
	dates   *BusinessTime
}

func NewReconciler(periods PeriodStore, dates *BusinessTime) *Reconciler {
	return &Reconciler{periods: periods, dates: dates}
}

// Reconcile builds the classified report for an optional machine code and
// date range. Items come back most recent period first; the summary is
// folded over the items, not recomputed by a second query.
//
// A machine's very first collection in the filtered window has no prior
// baseline and forms no period, so cash sales recorded before it never
// appear in any item. That mirrors the upstream process; a synthetic
// "period zero" is deliberately not invented.
func (r *Reconciler) Reconcile(ctx context.Context, machineCode, from, to string) (*models.ReconciliationReport, error) {
	lo, hi, err := r.dates.Range(from, to)
	if err != nil {
		return nil, err
	}

	periods, err := r.periods.CollectionPeriods(ctx, machineCode, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("loading collection periods: %w", err)
	}

	report := &models.ReconciliationReport{
		Items: make([]models.ReconciliationItem, 0, len(periods)),
	}

	for _, p := range periods {
		item := classifyPeriod(p)
		report.Items = append(report.Items, item)

		report.Summary.TotalExpected += item.ExpectedAmount
		report.Summary.TotalActual += item.ActualAmount
		report.Summary.TotalDifference += item.Difference

		switch item.Status {
		case models.ReconMatched:
			report.Summary.Matched++
		case models.ReconShortage:
			report.Summary.Shortages++
		case models.ReconOverage:
			report.Summary.Overages++
		case models.ReconNoSales:
			report.Summary.NoSales++
		}
	}

	report.Summary.TotalExpected = Round2(report.Summary.TotalExpected)
	report.Summary.TotalActual = Round2(report.Summary.TotalActual)
	report.Summary.TotalDifference = Round2(report.Summary.TotalDifference)

	return report, nil
}

// classifyPeriod turns one aggregated period into a classified item.
// Classification precedence: no_sales, matched, shortage, overage.
func classifyPeriod(p models.CollectionPeriod) models.ReconciliationItem {
	expected := Round2(p.CashTotal)
	actual := Round2(p.ActualAmount)
	difference := Round2(expected - actual)

	var percent float64
	if expected > 0 {
		percent = Round2(difference / expected * 100)
	}

	var status models.ReconciliationStatus

	switch {
	case expected == 0 && actual == 0:
		status = models.ReconNoSales
	case difference == 0:
		status = models.ReconMatched
	case actual < expected:
		status = models.ReconShortage
	default:
		status = models.ReconOverage
	}

	return models.ReconciliationItem{
		MachineCode:      p.MachineCode,
		MachineName:      p.MachineName,
		PeriodStart:      p.PeriodStart,
		PeriodEnd:        p.PeriodEnd,
		ExpectedAmount:   expected,
		ActualAmount:     actual,
		Difference:       difference,
		PercentDeviation: percent,
		Status:           status,
		CashOrdersCount:  p.CashOrders,
		CollectionID:     p.CollectionID,
	}
}
