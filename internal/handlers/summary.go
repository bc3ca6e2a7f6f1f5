package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/vendtrack/vendtrack-api/internal/models"
	"github.com/vendtrack/vendtrack-api/internal/services"
	"github.com/vendtrack/vendtrack-api/internal/utils"
)

// SummaryService serves the derived rollup views.
type SummaryService interface {
	DailyTotals(ctx context.Context, from, to string) ([]models.DailyTotal, error)
	TopMachines(ctx context.Context, limit int, from, to string) ([]models.TopMachine, error)
	MachineTotals(ctx context.Context, from, to string) ([]models.MachineTotal, error)
}

type SummaryHandler struct {
	svc SummaryService
}

func NewSummaryHandler(svc SummaryService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// Daily returns per-day paid totals.
// GET /v1/summary/daily?from=&to=
func (h *SummaryHandler) Daily(c fiber.Ctx) error {
	rows, err := h.svc.DailyTotals(c.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		return summaryError(c, err)
	}

	if rows == nil {
		rows = []models.DailyTotal{}
	}

	return utils.SuccessResponse(c, rows)
}

// TopMachines returns the machines with the highest paid sales.
// GET /v1/summary/top-machines?limit=&from=&to=
func (h *SummaryHandler) TopMachines(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "limit must be a non-negative integer")
	}

	rows, err := h.svc.TopMachines(c.Context(), limit, c.Query("from"), c.Query("to"))
	if err != nil {
		return summaryError(c, err)
	}

	if rows == nil {
		rows = []models.TopMachine{}
	}

	return utils.SuccessResponse(c, rows)
}

// Machines returns per-machine cash/card/refund totals.
// GET /v1/summary/machines?from=&to=
func (h *SummaryHandler) Machines(c fiber.Ctx) error {
	rows, err := h.svc.MachineTotals(c.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		return summaryError(c, err)
	}

	if rows == nil {
		rows = []models.MachineTotal{}
	}

	return utils.SuccessResponse(c, rows)
}

func summaryError(c fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrInvalidDate) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to build summary")
}
