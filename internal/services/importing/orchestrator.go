package importing

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"time"

	"donation-import-backend/internal/models"
	"donation-import-backend/internal/services/association"
	"donation-import-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Stores bundles every port one row's processing touches. The TxRunner hands
// a transaction-scoped bundle to the per-row closure, so a failure partway
// through one row's writes rolls back that row only.
type Stores struct {
	Donors       DonorStore
	Children     association.ChildStore
	Projects     association.ProjectStore
	Sponsorships association.SponsorshipStore
	Donations    DonationStore
	Restorer     Restorer
}

type TxRunner interface {
	InTransaction(fn func(s Stores) error) error
}

type BatchStore interface {
	Create(batch *models.ImportBatch) error
	Update(batch *models.ImportBatch) error
}

// Orchestrator drives the full pipeline over an export file: normalize,
// classify, resolve, duplicate-check, persist — one row at a time, in file
// order. Row failures are folded into the summary; only file-level failures
// abort the run.
type Orchestrator struct {
	tx      TxRunner
	batches BatchStore
	log     *logrus.Entry
}

func NewOrchestrator(tx TxRunner, batches BatchStore) *Orchestrator {
	return &Orchestrator{
		tx:      tx,
		batches: batches,
		log:     logger.WithComponent("import_orchestrator"),
	}
}

// RunFile imports the export file at path.
func (o *Orchestrator) RunFile(path string) (*BatchSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open export file")
	}
	defer f.Close()
	return o.Run(filepath.Base(path), f)
}

// Run imports one export. The returned summary is also folded into a
// persisted ImportBatch record for the review surface.
func (o *Orchestrator) Run(filename string, r io.Reader) (*BatchSummary, error) {
	batch := &models.ImportBatch{
		ID:        uuid.New(),
		Filename:  filename,
		Status:    "processing",
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	if err := o.batches.Create(batch); err != nil {
		return nil, errors.Wrap(err, "create import batch")
	}

	summary := &BatchSummary{BatchID: batch.ID, Filename: filename}

	rows, err := o.readRows(r, summary)
	if err != nil {
		o.failBatch(batch)
		return nil, err
	}

	o.log.WithFields(logger.Fields{
		"batch":    batch.ID,
		"filename": filename,
		"rows":     summary.TotalRows,
	}).Info("starting import run")

	guard := NewDuplicateGuard(rows)

	for _, row := range rows {
		if err := o.processRow(batch.ID, row, guard, summary); err != nil {
			summary.addError(row.RowNumber, err.Error())
			o.log.WithError(err).WithField("row", row.RowNumber).Warn("row failed")
		}
	}

	o.finalizeBatch(batch, summary)
	o.log.WithFields(logger.Fields{
		"batch":           batch.ID,
		"donations":       summary.DonationsCreated(),
		"needs_attention": summary.NeedsAttention,
		"errors":          len(summary.Errors),
	}).Info("import run completed")
	return summary, nil
}

// readRows parses the whole file up front: the duplicate pre-pass needs
// visibility across all rows before any is processed. Row numbers are
// 1-based over data rows (the header is row 0).
func (o *Orchestrator) readRows(r io.Reader, summary *BatchSummary) ([]*ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "cannot read export header")
	}
	normalizer, err := NewRowNormalizer(header)
	if err != nil {
		return nil, err
	}

	var rows []*ImportRow
	rowNumber := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNumber++
		summary.TotalRows++
		if err != nil {
			summary.addError(rowNumber, err.Error())
			continue
		}
		row, err := normalizer.Normalize(record, rowNumber)
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				summary.addError(rowErr.RowNumber, rowErr.Message)
				continue
			}
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRow runs classification, resolution, the duplicate check, and the
// factory inside one transaction.
func (o *Orchestrator) processRow(batchID uuid.UUID, row *ImportRow, guard *DuplicateGuard, summary *BatchSummary) error {
	var created []*models.Donation
	err := o.tx.InTransaction(func(s Stores) error {
		resolver := association.NewResolver(s.Children, s.Projects, s.Sponsorships)
		factory := NewFactory(s.Donors, s.Donations, s.Restorer)

		classification := ClassifyStatus(row.RawStatus)
		resolution, err := resolver.Resolve(row.View())
		if err != nil {
			return err
		}
		duplicate, duplicateReason := guard.Check(row)

		created, err = factory.Build(batchID, row, classification, resolution, duplicate, duplicateReason)
		return err
	})
	if err != nil {
		return err
	}
	for _, d := range created {
		summary.addStatus(d.Status)
	}
	return nil
}

func (o *Orchestrator) finalizeBatch(batch *models.ImportBatch, summary *BatchSummary) {
	now := time.Now()
	batch.TotalRows = summary.TotalRows
	batch.SucceededCount = summary.Succeeded
	batch.FailedCount = summary.Failed
	batch.RefundedCount = summary.Refunded
	batch.CanceledCount = summary.Canceled
	batch.NeedsAttentionCount = summary.NeedsAttention
	batch.ErrorCount = len(summary.Errors)
	batch.Status = "completed"
	batch.CompletedAt = &now
	if err := o.batches.Update(batch); err != nil {
		o.log.WithError(err).Error("failed to finalize batch record")
	}
}

func (o *Orchestrator) failBatch(batch *models.ImportBatch) {
	now := time.Now()
	batch.Status = "failed"
	batch.CompletedAt = &now
	if err := o.batches.Update(batch); err != nil {
		o.log.WithError(err).Error("failed to mark batch failed")
	}
}
