package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
	pkgerrors "github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

type Repository interface {
	// Upsert inserts or replaces the row keyed by RecordID. The original
	// created_at survives repeated upserts for the same key; every other
	// column takes the latest call's value. Safe to retry after a partial
	// failure.
	Upsert(ctx context.Context, rec *model.Transaction) error
	// SetStatus performs a single-column status update. Callers treat a
	// failure as log-only; status is an observability aid, not a
	// correctness-critical field.
	SetStatus(ctx context.Context, recordID string, status model.ProcessStatus) error
	// Finalize transitions to DELIVERED only when shouldDeliver is true,
	// otherwise it leaves the current status untouched. It never reverts a
	// DELIVERED row to an earlier state.
	Finalize(ctx context.Context, recordID string, shouldDeliver bool) error
	Get(ctx context.Context, recordID string) (*model.Transaction, error)
	Exists(ctx context.Context, recordID string) (bool, error)
	ListByDate(ctx context.Context, uploadDate string) ([]model.Transaction, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const upsertQuery = `INSERT INTO transactions
	(record_id, group_id, brand_slug, upload_date, upload_time, reference,
	 location_evidence, presented_label, storage_key, file_checksum,
	 orig_filename, process_status, driver_copy_sent, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
	ON DUPLICATE KEY UPDATE
	 group_id = VALUES(group_id),
	 brand_slug = VALUES(brand_slug),
	 upload_date = VALUES(upload_date),
	 upload_time = VALUES(upload_time),
	 reference = VALUES(reference),
	 location_evidence = VALUES(location_evidence),
	 presented_label = VALUES(presented_label),
	 storage_key = VALUES(storage_key),
	 file_checksum = VALUES(file_checksum),
	 orig_filename = VALUES(orig_filename),
	 process_status = VALUES(process_status),
	 driver_copy_sent = VALUES(driver_copy_sent)`

func (r *repository) Upsert(ctx context.Context, rec *model.Transaction) error {
	evidence, err := json.Marshal(rec.Location)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, upsertQuery,
		rec.RecordID, rec.GroupID, rec.BrandSlug, rec.UploadDate, rec.UploadTime,
		rec.Reference, evidence, rec.PresentedLabel, rec.StorageKey,
		rec.FileChecksum, rec.OrigFilename, rec.ProcessStatus, rec.DriverCopySent)
	return err
}

func (r *repository) SetStatus(ctx context.Context, recordID string, status model.ProcessStatus) error {
	query := `UPDATE transactions SET process_status = ? WHERE record_id = ?`
	_, err := r.db.ExecContext(ctx, query, status, recordID)
	return err
}

func (r *repository) Finalize(ctx context.Context, recordID string, shouldDeliver bool) error {
	if !shouldDeliver {
		return nil
	}
	query := `UPDATE transactions SET process_status = ? WHERE record_id = ?`
	_, err := r.db.ExecContext(ctx, query, model.StatusDelivered, recordID)
	return err
}

const selectColumns = `record_id, group_id, brand_slug, upload_date, upload_time,
	reference, location_evidence, presented_label, storage_key, file_checksum,
	orig_filename, process_status, driver_copy_sent, created_at`

func (r *repository) Get(ctx context.Context, recordID string) (*model.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE record_id = ?`

	rec, err := scanTransaction(r.db.QueryRowContext(ctx, query, recordID))
	if err == sql.ErrNoRows {
		return nil, pkgerrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repository) Exists(ctx context.Context, recordID string) (bool, error) {
	var one int
	query := `SELECT 1 FROM transactions WHERE record_id = ?`
	err := r.db.QueryRowContext(ctx, query, recordID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) ListByDate(ctx context.Context, uploadDate string) ([]model.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE upload_date = ? ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, uploadDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.Transaction
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var rec model.Transaction
	var evidence []byte
	err := row.Scan(
		&rec.RecordID, &rec.GroupID, &rec.BrandSlug, &rec.UploadDate,
		&rec.UploadTime, &rec.Reference, &evidence, &rec.PresentedLabel,
		&rec.StorageKey, &rec.FileChecksum, &rec.OrigFilename,
		&rec.ProcessStatus, &rec.DriverCopySent, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &rec.Location); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}
