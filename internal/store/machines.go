package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// Machines reads the external machine directory, used once per import to
// build the code resolution snapshot.
type Machines struct {
	pool *pgxpool.Pool
}

func NewMachines(pool *pgxpool.Pool) *Machines {
	return &Machines{pool: pool}
}

func (s *Machines) ListMachines(ctx context.Context) ([]models.Machine, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, code, name FROM machines ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing machines: %w", err)
	}
	defer rows.Close()

	var machines []models.Machine

	for rows.Next() {
		var m models.Machine
		if err := rows.Scan(&m.ID, &m.Code, &m.Name); err != nil {
			return nil, fmt.Errorf("scanning machine: %w", err)
		}

		machines = append(machines, m)
	}

	return machines, rows.Err()
}
