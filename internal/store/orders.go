package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// Orders persists and aggregates sales orders. Rows are only ever created
// by the importer and only ever removed by batch deletion.
type Orders struct {
	pool *pgxpool.Pool
	tz   string
}

func NewOrders(pool *pgxpool.Pool, businessTZ string) *Orders {
	return &Orders{pool: pool, tz: businessTZ}
}

const orderColumns = `order_number, product_name, flavor, payment_method, payment_status,
	machine_code, machine_id, address, price, order_date, import_batch_id`

// InsertOrders inserts one chunk in a single statement. Conflicts against
// the partial unique index on (order_number, machine_code, order_date) are
// ignored, both against existing rows and within the statement itself, so
// the command tag's row count is the number actually inserted.
func (s *Orders) InsertOrders(ctx context.Context, orders []models.SalesOrder) (int64, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	var sb strings.Builder

	sb.WriteString(`INSERT INTO sales_orders (` + orderColumns + `) VALUES `)

	args := make([]any, 0, len(orders)*11)

	for i, o := range orders {
		if i > 0 {
			sb.WriteByte(',')
		}

		base := i * 11
		sb.WriteByte('(')

		for j := 1; j <= 11; j++ {
			if j > 1 {
				sb.WriteByte(',')
			}

			fmt.Fprintf(&sb, "$%d", base+j)
		}

		sb.WriteByte(')')

		args = append(args,
			o.OrderNumber, o.ProductName, o.Flavor, o.PaymentMethod, o.PaymentStatus,
			o.MachineCode, o.MachineID, o.Address, o.Price, o.OrderDate, o.ImportBatchID,
		)
	}

	sb.WriteString(` ON CONFLICT (order_number, machine_code, order_date) WHERE order_number IS NOT NULL DO NOTHING`)

	tag, err := s.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("inserting orders: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteBatch removes all orders sharing the batch id and reports how many
// went away. An unknown id is not an error.
func (s *Orders) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sales_orders WHERE import_batch_id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("deleting batch: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (s *Orders) DailyTotals(ctx context.Context, from, to *time.Time) ([]models.DailyTotal, error) {
	query := `
		SELECT to_char(order_date AT TIME ZONE $1, 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(price) FILTER (WHERE payment_method = 'cash'), 0) AS cash_total,
		       COALESCE(SUM(price) FILTER (WHERE payment_method = 'card'), 0) AS card_total,
		       COALESCE(SUM(price), 0) AS total,
		       COUNT(*) AS order_count
		FROM sales_orders
		WHERE payment_status = 'paid'
		  AND ($2::timestamptz IS NULL OR order_date >= $2)
		  AND ($3::timestamptz IS NULL OR order_date <= $3)
		GROUP BY 1
		ORDER BY 1
	`

	rows, err := s.pool.Query(ctx, query, s.tz, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying daily totals: %w", err)
	}
	defer rows.Close()

	var totals []models.DailyTotal

	for rows.Next() {
		var t models.DailyTotal
		if err := rows.Scan(&t.Day, &t.CashTotal, &t.CardTotal, &t.Total, &t.OrderCount); err != nil {
			return nil, fmt.Errorf("scanning daily total: %w", err)
		}

		totals = append(totals, t)
	}

	return totals, rows.Err()
}

func (s *Orders) TopMachines(ctx context.Context, limit int, from, to *time.Time) ([]models.TopMachine, error) {
	query := `
		SELECT machine_code,
		       COALESCE(SUM(price), 0) AS total,
		       COUNT(*) AS order_count
		FROM sales_orders
		WHERE payment_status = 'paid'
		  AND ($1::timestamptz IS NULL OR order_date >= $1)
		  AND ($2::timestamptz IS NULL OR order_date <= $2)
		GROUP BY machine_code
		ORDER BY total DESC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top machines: %w", err)
	}
	defer rows.Close()

	var machines []models.TopMachine

	for rows.Next() {
		var m models.TopMachine
		if err := rows.Scan(&m.MachineCode, &m.Total, &m.OrderCount); err != nil {
			return nil, fmt.Errorf("scanning top machine: %w", err)
		}

		machines = append(machines, m)
	}

	return machines, rows.Err()
}

func (s *Orders) MachineTotals(ctx context.Context, from, to *time.Time) ([]models.MachineTotal, error) {
	query := `
		SELECT machine_code,
		       COALESCE(SUM(price) FILTER (WHERE payment_method = 'cash' AND payment_status = 'paid'), 0) AS cash_total,
		       COALESCE(SUM(price) FILTER (WHERE payment_method = 'card' AND payment_status = 'paid'), 0) AS card_total,
		       COALESCE(SUM(price) FILTER (WHERE payment_status = 'refunded'), 0) AS refunded_total,
		       COUNT(*) AS order_count
		FROM sales_orders
		WHERE ($1::timestamptz IS NULL OR order_date >= $1)
		  AND ($2::timestamptz IS NULL OR order_date <= $2)
		GROUP BY machine_code
		ORDER BY machine_code
	`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying machine totals: %w", err)
	}
	defer rows.Close()

	var totals []models.MachineTotal

	for rows.Next() {
		var t models.MachineTotal
		if err := rows.Scan(&t.MachineCode, &t.CashTotal, &t.CardTotal, &t.RefundedTotal, &t.OrderCount); err != nil {
			return nil, fmt.Errorf("scanning machine total: %w", err)
		}

		totals = append(totals, t)
	}

	return totals, rows.Err()
}
