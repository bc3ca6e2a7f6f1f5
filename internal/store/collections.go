package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// Collections reads the external cash-pickup events. This core never writes
// them.
type Collections struct {
	pool *pgxpool.Pool
}

func NewCollections(pool *pgxpool.Pool) *Collections {
	return &Collections{pool: pool}
}

// CollectionPeriods pairs every RECEIVED collection with its predecessor via
// LAG and aggregates matching cash sales into the half-open period
// (prev, curr] in the same pass. A machine's first collection has no
// predecessor and is filtered out; the join key is the textual machine code,
// case-insensitive, because imported rows may carry no machine foreign key.
func (s *Collections) CollectionPeriods(ctx context.Context, machineCode string, from, to *time.Time) ([]models.CollectionPeriod, error) {
	query := `
		WITH received AS (
			SELECT c.id,
			       c.amount,
			       c.collected_at,
			       m.code AS machine_code,
			       m.name AS machine_name,
			       LAG(c.collected_at) OVER (
			           PARTITION BY c.machine_id ORDER BY c.collected_at
			       ) AS prev_collected_at
			FROM collections c
			JOIN machines m ON m.id = c.machine_id
			WHERE c.status = 'RECEIVED'
			  AND ($1::text IS NULL OR lower(m.code) = lower($1))
			  AND ($2::timestamptz IS NULL OR c.collected_at >= $2)
			  AND ($3::timestamptz IS NULL OR c.collected_at <= $3)
		)
		SELECT r.machine_code,
		       r.machine_name,
		       r.prev_collected_at,
		       r.collected_at,
		       r.id,
		       r.amount,
		       COALESCE(SUM(o.price), 0) AS cash_total,
		       COUNT(o.id) AS cash_orders
		FROM received r
		LEFT JOIN sales_orders o
		  ON lower(o.machine_code) = lower(r.machine_code)
		 AND o.payment_method = 'cash'
		 AND o.payment_status = 'paid'
		 AND o.order_date > r.prev_collected_at
		 AND o.order_date <= r.collected_at
		WHERE r.prev_collected_at IS NOT NULL
		GROUP BY r.machine_code, r.machine_name, r.prev_collected_at, r.collected_at, r.id, r.amount
		ORDER BY r.collected_at DESC
	`

	var codeArg *string
	if machineCode != "" {
		codeArg = &machineCode
	}

	rows, err := s.pool.Query(ctx, query, codeArg, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying collection periods: %w", err)
	}
	defer rows.Close()

	var periods []models.CollectionPeriod

	for rows.Next() {
		var p models.CollectionPeriod
		if err := rows.Scan(
			&p.MachineCode, &p.MachineName, &p.PeriodStart, &p.PeriodEnd,
			&p.CollectionID, &p.ActualAmount, &p.CashTotal, &p.CashOrders,
		); err != nil {
			return nil, fmt.Errorf("scanning collection period: %w", err)
		}

		periods = append(periods, p)
	}

	return periods, rows.Err()
}
