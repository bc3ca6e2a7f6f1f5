package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

const (
	// insertChunkSize bounds single-statement size; chunks run sequentially.
	insertChunkSize = 500
	// maxCallerErrors truncates the parse-error list returned to the caller.
	// The full list is logged server-side.
	maxCallerErrors = 50
	// maxLoggedErrors is how many parse errors are logged in detail.
	maxLoggedErrors = 10
	// maxSkipSamples is how many skips of each kind are logged in detail.
	maxSkipSamples = 3
)

// OrderStore persists normalized orders with duplicate protection.
type OrderStore interface {
	// InsertOrders inserts one chunk with insert-ignore semantics against
	// the (order_number, machine_code, order_date) uniqueness invariant and
	// returns how many rows were actually inserted.
	InsertOrders(ctx context.Context, orders []models.SalesOrder) (int64, error)
	DeleteBatch(ctx context.Context, batchID string) (int64, error)
}

// MachineDirectory is the external machine registry, read once per import.
type MachineDirectory interface {
	ListMachines(ctx context.Context) ([]models.Machine, error)
}

// ArchiveSink stores a copy of the original upload bytes. A nil ref with a
// nil error means archiving is disabled or unavailable.
type ArchiveSink interface {
	Store(ctx context.Context, data []byte, batchID, fileName, caption string) (*models.ArchiveRef, error)
}

// ImportFileStore records archival metadata for successfully archived files.
type ImportFileStore interface {
	Create(ctx context.Context, file models.ImportFile) error
	List(ctx context.Context) ([]models.ImportFile, error)
}

// Importer runs the whole ingestion pipeline for one upload: read sheet,
// detect columns, normalize rows, persist in chunks, archive best-effort.
type Importer struct {
	orders   OrderStore
	machines MachineDirectory
	archive  ArchiveSink
	files    ImportFileStore
	mapper   *ColumnMapper
	dates    *BusinessTime
	log      *slog.Logger
}

func NewImporter(orders OrderStore, machines MachineDirectory, archive ArchiveSink, files ImportFileStore, dates *BusinessTime, log *slog.Logger) *Importer {
	return &Importer{
		orders:   orders,
		machines: machines,
		archive:  archive,
		files:    files,
		mapper:   NewColumnMapper(log),
		dates:    dates,
		log:      log,
	}
}

// Import ingests one spreadsheet upload. Only a structurally unreadable
// file is a hard failure; every per-row problem is absorbed into the
// summary. The call returns as soon as persistence completes; archival
// happens independently and its failure never propagates.
func (s *Importer) Import(ctx context.Context, data []byte, originalName string) (*models.ImportSummary, error) {
	sheet, err := ReadSheet(data)
	if err != nil {
		return nil, err
	}

	columns := s.mapper.Detect(sheet.Headers)

	s.log.Info("import started",
		"file", originalName,
		"rows", len(sheet.Rows),
		"headers", headerPreview(sheet.Headers),
		"columns", columns,
	)

	machineMap, err := s.machineSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	normalizer := NewRowNormalizer(columns, machineMap, s.dates)

	var (
		orders                         []models.SalesOrder
		rowErrors                      []*RowError
		paymentSkips, machineSkips     int
		paymentSamples, machineSamples []string
	)

	for i, row := range sheet.Rows {
		if IsEmptyRow(row) {
			continue
		}

		rowNum := i + 2

		order, skip, rowErr := normalizer.Normalize(row, rowNum)

		switch {
		case rowErr != nil:
			rowErrors = append(rowErrors, rowErr)
		case skip == SkipPaymentResource:
			paymentSkips++
			if len(paymentSamples) < maxSkipSamples {
				paymentSamples = append(paymentSamples, fmt.Sprintf("row %d: %q", rowNum, cell(row, columns.PaymentResource)))
			}
		case skip == SkipMachineCode:
			machineSkips++
			if len(machineSamples) < maxSkipSamples {
				machineSamples = append(machineSamples, fmt.Sprintf("row %d", rowNum))
			}
		default:
			orders = append(orders, *order)
		}
	}

	batchID := uuid.New().String()[:8]
	for i := range orders {
		orders[i].ImportBatchID = batchID
	}

	var imported, duplicates int64

	for start := 0; start < len(orders); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(orders) {
			end = len(orders)
		}

		chunk := orders[start:end]

		inserted, err := s.orders.InsertOrders(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("inserting chunk at row offset %d: %w", start, err)
		}

		imported += inserted
		duplicates += int64(len(chunk)) - inserted
	}

	if s.archive != nil {
		caption := fmt.Sprintf("sales import %s (%s)", batchID, originalName)
		go s.archiveUpload(data, batchID, originalName, caption)
	}

	s.logDiagnostics(batchID, int(imported), paymentSkips, machineSkips, paymentSamples, machineSamples, rowErrors)

	return &models.ImportSummary{
		Imported:         int(imported),
		Skipped:          paymentSkips + machineSkips,
		Duplicates:       int(duplicates),
		Errors:           truncateErrors(rowErrors, maxCallerErrors),
		BatchID:          batchID,
		MachinesFound:    normalizer.MatchedMachines(),
		MachinesNotFound: normalizer.UnresolvedMachines(),
	}, nil
}

// DeleteBatch removes every order persisted under the given batch id. An
// unknown id deletes nothing and is not an error.
func (s *Importer) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	deleted, err := s.orders.DeleteBatch(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("deleting batch %s: %w", batchID, err)
	}

	s.log.Info("batch deleted", "batch_id", batchID, "deleted", deleted)

	return deleted, nil
}

// ListImportFiles returns archival metadata for past imports.
func (s *Importer) ListImportFiles(ctx context.Context) ([]models.ImportFile, error) {
	return s.files.List(ctx)
}

// machineSnapshot builds the case-insensitive code -> id map fresh for this
// call, so concurrent machine edits cannot leave a stale process-wide cache.
func (s *Importer) machineSnapshot(ctx context.Context) (map[string]int64, error) {
	machines, err := s.machines.ListMachines(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing machines: %w", err)
	}

	snapshot := make(map[string]int64, len(machines))
	for _, m := range machines {
		snapshot[strings.ToLower(strings.TrimSpace(m.Code))] = m.ID
	}

	return snapshot, nil
}

// archiveUpload runs detached from the import call. Any failure here is
// logged and isolated; the import already returned.
func (s *Importer) archiveUpload(data []byte, batchID, originalName, caption string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("archive panic", "batch_id", batchID, "panic", r)
		}
	}()

	ctx := context.Background()

	ref, err := s.archive.Store(ctx, data, batchID, originalName, caption)
	if err != nil {
		s.log.Warn("archive failed", "batch_id", batchID, "error", err)
		return
	}

	if ref == nil {
		s.log.Info("archive disabled, upload not stored", "batch_id", batchID)
		return
	}

	err = s.files.Create(ctx, models.ImportFile{
		BatchID:      batchID,
		OriginalName: originalName,
		StorageKey:   ref.StorageKey,
		Size:         int64(len(data)),
	})
	if err != nil {
		s.log.Warn("recording import file failed", "batch_id", batchID, "error", err)
		return
	}

	s.log.Info("upload archived", "batch_id", batchID, "key", ref.StorageKey)
}

func (s *Importer) logDiagnostics(batchID string, imported, paymentSkips, machineSkips int, paymentSamples, machineSamples []string, rowErrors []*RowError) {
	if paymentSkips > 0 {
		s.log.Info("rows skipped: unrecognized payment resource",
			"batch_id", batchID, "count", paymentSkips, "samples", paymentSamples)
	}

	if machineSkips > 0 {
		s.log.Info("rows skipped: empty machine code",
			"batch_id", batchID, "count", machineSkips, "samples", machineSamples)
	}

	for i, rowErr := range rowErrors {
		if i >= maxLoggedErrors {
			s.log.Warn("more parse errors omitted", "batch_id", batchID, "remaining", len(rowErrors)-maxLoggedErrors)
			break
		}

		s.log.Warn("row parse error", "batch_id", batchID, "row", rowErr.Row, "error", rowErr.Message)
	}

	// Everything skipped and nothing imported strongly indicates a column
	// layout mismatch rather than genuinely empty input.
	if paymentSkips+machineSkips > 0 && imported == 0 {
		s.log.Warn("import produced no rows but skipped some; check column layout",
			"batch_id", batchID, "skipped", paymentSkips+machineSkips)
	}
}

func truncateErrors(rowErrors []*RowError, limit int) []string {
	msgs := make([]string, 0, len(rowErrors))

	for i, rowErr := range rowErrors {
		if i >= limit {
			break
		}

		msgs = append(msgs, rowErr.Error())
	}

	return msgs
}

func headerPreview(headers []string) []string {
	if len(headers) > 10 {
		return headers[:10]
	}

	return headers
}
