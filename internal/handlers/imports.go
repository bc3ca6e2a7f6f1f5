package handlers

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/vendtrack/vendtrack-api/internal/models"
	"github.com/vendtrack/vendtrack-api/internal/utils"
)

// ImportService runs the ingestion pipeline for uploaded spreadsheets.
type ImportService interface {
	Import(ctx context.Context, data []byte, originalName string) (*models.ImportSummary, error)
	DeleteBatch(ctx context.Context, batchID string) (int64, error)
	ListImportFiles(ctx context.Context) ([]models.ImportFile, error)
}

// UploadValidator pre-screens uploads before the pipeline sees them.
type UploadValidator interface {
	Validate(fileName string, data []byte) error
}

// ImportsHandler handles spreadsheet upload, batch deletion and the
// archival history listing.
type ImportsHandler struct {
	svc       ImportService
	validator UploadValidator
}

func NewImportsHandler(svc ImportService, validator UploadValidator) *ImportsHandler {
	return &ImportsHandler{svc: svc, validator: validator}
}

// Upload ingests one spreadsheet.
// POST /v1/imports, multipart field "file"
func (h *ImportsHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unable to open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unable to read uploaded file")
	}

	if err := h.validator.Validate(fileHeader.Filename, data); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.svc.Import(c.Context(), data, fileHeader.Filename)
	if err != nil {
		// Only a structurally unreadable file or a database failure gets
		// here; per-row problems are inside the summary.
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	return utils.SuccessResponse(c, summary)
}

// DeleteBatch removes every order of one import batch.
// DELETE /v1/imports/:batchId
func (h *ImportsHandler) DeleteBatch(c fiber.Ctx) error {
	batchID := c.Params("batchId")
	if batchID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "batch id is required")
	}

	deleted, err := h.svc.DeleteBatch(c.Context(), batchID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to delete batch")
	}

	return utils.SuccessResponse(c, fiber.Map{"deleted_count": deleted})
}

// History lists archival metadata of past imports.
// GET /v1/imports
func (h *ImportsHandler) History(c fiber.Ctx) error {
	files, err := h.svc.ListImportFiles(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list imports")
	}

	if files == nil {
		files = []models.ImportFile{}
	}

	return utils.SuccessResponse(c, files)
}
