package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/vendtrack/vendtrack-api/internal/models"
	"github.com/vendtrack/vendtrack-api/internal/services"
	"github.com/vendtrack/vendtrack-api/internal/utils"
)

// ReconciliationService produces the classified shortage/overage report.
type ReconciliationService interface {
	Reconcile(ctx context.Context, machineCode, from, to string) (*models.ReconciliationReport, error)
}

type ReconciliationHandler struct {
	svc ReconciliationService
}

func NewReconciliationHandler(svc ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc}
}

// Get returns reconciliation items and their summary.
// GET /v1/reconciliation?machine_code=&from=&to=
func (h *ReconciliationHandler) Get(c fiber.Ctx) error {
	report, err := h.svc.Reconcile(
		c.Context(),
		c.Query("machine_code"),
		c.Query("from"),
		c.Query("to"),
	)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
		}

		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to build reconciliation report")
	}

	return utils.SuccessResponse(c, report)
}
