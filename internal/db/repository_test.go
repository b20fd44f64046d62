package db

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
	pkgerrors "github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

func testRecord() *model.Transaction {
	acc := 15.0
	return &model.Transaction{
		RecordID:   "7XK2M9PQ",
		GroupID:    "7XK2M9PQ",
		BrandSlug:  "acme",
		UploadDate: "2026-08-25",
		UploadTime: "14:30:05",
		Reference:  "ref-42",
		Location: model.Evidence{
			FromClient: &model.Candidate{Lat: 52.37, Lon: 4.90, Accuracy: &acc},
			Chosen:     &model.Chosen{Lat: 52.37, Lon: 4.90, Accuracy: &acc, Source: model.SourceGPS},
			Source:     model.SourceGPS,
		},
		PresentedLabel: model.SourceGPS,
		StorageKey:     "pods/acme/2026-08-25/143005_7XK2M9PQ_ref-42.jpg",
		FileChecksum:   strings.Repeat("ab", 32),
		OrigFilename:   "pod.jpg",
		ProcessStatus:  model.StatusReceived,
	}
}

func TestUpsertPreservesCreatedAtColumn(t *testing.T) {
	// The idempotency mechanism is structural: created_at is written on
	// insert and deliberately missing from the duplicate-key update list,
	// so a retried upsert is a full-row replace with one preserved column.
	assert.Contains(t, upsertQuery, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, upsertQuery, "created_at")
	update := upsertQuery[strings.Index(upsertQuery, "ON DUPLICATE KEY UPDATE"):]
	assert.NotContains(t, update, "created_at")
}

func TestUpsertExecutesInsertOrReplace(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	rec := testRecord()
	evidence, err := json.Marshal(rec.Location)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(rec.RecordID, rec.GroupID, rec.BrandSlug, rec.UploadDate,
			rec.UploadTime, rec.Reference, evidence, string(rec.PresentedLabel),
			rec.StorageKey, rec.FileChecksum, rec.OrigFilename,
			string(rec.ProcessStatus), rec.DriverCopySent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewRepository(mockDB)
	require.NoError(t, repo.Upsert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusSingleColumnUpdate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("UPDATE transactions SET process_status").
		WithArgs(string(model.StatusErrorStaffMail), "7XK2M9PQ").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewRepository(mockDB)
	require.NoError(t, repo.SetStatus(context.Background(), "7XK2M9PQ", model.StatusErrorStaffMail))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeDeliversOnlyWhenGatePasses(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewRepository(mockDB)

	// shouldDeliver=false touches nothing: the current status, whatever it
	// is, stays put.
	require.NoError(t, repo.Finalize(context.Background(), "7XK2M9PQ", false))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("UPDATE transactions SET process_status").
		WithArgs(string(model.StatusDelivered), "7XK2M9PQ").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Finalize(context.Background(), "7XK2M9PQ", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func transactionRows(t *testing.T, recs ...*model.Transaction) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"record_id", "group_id", "brand_slug", "upload_date", "upload_time",
		"reference", "location_evidence", "presented_label", "storage_key",
		"file_checksum", "orig_filename", "process_status", "driver_copy_sent",
		"created_at",
	})
	for _, rec := range recs {
		evidence, err := json.Marshal(rec.Location)
		require.NoError(t, err)
		rows.AddRow(rec.RecordID, rec.GroupID, rec.BrandSlug, rec.UploadDate,
			rec.UploadTime, rec.Reference, evidence, string(rec.PresentedLabel),
			rec.StorageKey, rec.FileChecksum, rec.OrigFilename,
			string(rec.ProcessStatus), rec.DriverCopySent, rec.CreatedAt)
	}
	return rows
}

func TestGetRoundTripsLocationEvidence(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	rec := testRecord()
	rec.CreatedAt = time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE record_id").
		WithArgs(rec.RecordID).
		WillReturnRows(transactionRows(t, rec))

	repo := NewRepository(mockDB)
	got, err := repo.Get(context.Background(), rec.RecordID)
	require.NoError(t, err)

	assert.Equal(t, rec.RecordID, got.RecordID)
	assert.Equal(t, model.SourceGPS, got.PresentedLabel)
	require.NotNil(t, got.Location.Chosen)
	assert.Equal(t, 52.37, got.Location.Chosen.Lat)
	require.NotNil(t, got.Location.Chosen.Accuracy)
	assert.Equal(t, 15.0, *got.Location.Chosen.Accuracy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE record_id").
		WithArgs("MISSING").
		WillReturnRows(transactionRows(t))

	repo := NewRepository(mockDB)
	_, err = repo.Get(context.Background(), "MISSING")
	assert.ErrorIs(t, err, pkgerrors.ErrRecordNotFound)
}

func TestExists(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT 1 FROM transactions").
		WithArgs("7XK2M9PQ").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM transactions").
		WithArgs("MISSING").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewRepository(mockDB)

	exists, err := repo.Exists(context.Background(), "7XK2M9PQ")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(context.Background(), "MISSING")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListByDate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	a := testRecord()
	b := testRecord()
	b.RecordID = "7XK2M9PQ-2"

	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE upload_date").
		WithArgs("2026-08-25").
		WillReturnRows(transactionRows(t, a, b))

	repo := NewRepository(mockDB)
	recs, err := repo.ListByDate(context.Background(), "2026-08-25")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "7XK2M9PQ-2", recs[1].RecordID)
}
