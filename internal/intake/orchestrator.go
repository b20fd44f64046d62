// Package intake runs the per-file pipeline: validate, resolve location,
// stamp, store, record, notify, finalize. Storage is the primary durability
// guarantee; everything downstream of the storage write degrades without
// aborting the file.
package intake

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AHLJvanderPlas/Podfy-app/internal/brand"
	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	"github.com/AHLJvanderPlas/Podfy-app/internal/db"
	"github.com/AHLJvanderPlas/Podfy-app/internal/geo"
	"github.com/AHLJvanderPlas/Podfy-app/internal/ident"
	"github.com/AHLJvanderPlas/Podfy-app/internal/logger"
	"github.com/AHLJvanderPlas/Podfy-app/internal/mail"
	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
	"github.com/AHLJvanderPlas/Podfy-app/internal/sniff"
	"github.com/AHLJvanderPlas/Podfy-app/internal/storage"
	pkgerrors "github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

// Notifier dispatches staff and uploader notifications and reports
// per-group outcomes without returning errors.
type Notifier interface {
	Notify(ctx context.Context, rec *model.Transaction, b brand.Brand, uploaderEmail string, fileCopy *mail.Attachment) mail.Outcomes
}

// Stamper brands PDF bytes; best-effort.
type Stamper interface {
	StampPDF(data []byte, b brand.Brand, recordID string) []byte
}

type Orchestrator struct {
	repo     db.Repository
	store    storage.Storage
	notifier Notifier
	brands   *brand.Registry
	stamper  Stamper
	tz       string
	log      zerolog.Logger
}

func NewOrchestrator(
	cfg *config.Config,
	repo db.Repository,
	store storage.Storage,
	notifier Notifier,
	brands *brand.Registry,
	stamper Stamper,
) *Orchestrator {
	return &Orchestrator{
		repo:     repo,
		store:    store,
		notifier: notifier,
		brands:   brands,
		stamper:  stamper,
		tz:       cfg.Intake.DefaultTimezone,
		log:      logger.For("intake"),
	}
}

// ProcessBatch runs the pipeline once per file, strictly sequentially: file
// N fully completes, notifications included, before file N+1 begins. All
// files share one group identifier; a single-file batch uses it directly as
// the record identifier. One file's fatal error is captured in its result
// and does not stop the remaining files.
func (o *Orchestrator) ProcessBatch(ctx context.Context, files []model.UploadedFile, sub model.Submission) []model.FileResult {
	groupID := ident.NewUnique(ident.DefaultLength, func(id string) bool {
		exists, err := o.repo.Exists(ctx, id)
		return err == nil && exists
	})

	results := make([]model.FileResult, 0, len(files))
	for i, f := range files {
		results = append(results, o.ProcessFile(ctx, f, sub, groupID, i, len(files)))
	}
	return results
}

// ProcessFile runs one file through the full pipeline. index is zero-based
// within the batch.
func (o *Orchestrator) ProcessFile(ctx context.Context, file model.UploadedFile, sub model.Submission, groupID string, index, total int) model.FileResult {
	recordID := groupID
	if total > 1 {
		recordID = fmt.Sprintf("%s-%d", groupID, index+1)
	}

	result := model.FileResult{
		RecordID: recordID,
		GroupID:  groupID,
		Filename: file.Filename,
	}
	log := o.log.With().Str("record_id", recordID).Str("file", file.Filename).Logger()

	// Location resolution never fails; absence of every signal is a valid
	// UNKNOWN outcome.
	exifCoords := geo.ExtractGPS(file.Data, file.ContentType)
	evidence := geo.Resolve(exifCoords, sub.ClientCoords, sub.NetworkCoords)

	sniffed, err := sniff.Validate(file.Data, file.ContentType, file.Filename)
	if err != nil {
		log.Warn().Err(err).Msg("File rejected")
		result.RecordID = ""
		if rej, ok := pkgerrors.AsRejection(err); ok {
			result.Rejection = string(rej.Reason)
		} else {
			result.Rejection = string(pkgerrors.RejectUnsupported)
		}
		return result
	}

	b := o.brands.Resolve(sub.BrandSlug)

	data := file.Data
	if sniffed.Kind == sniff.KindPDF && o.stamper != nil {
		data = o.stamper.StampPDF(data, b, recordID)
	}

	uploadDate, uploadTime := o.localClock(sub.Timezone)
	checksum := sha256.Sum256(data)
	contentType := sniff.MIMEForKind(sniffed.Kind)
	key := storage.BuildKey(b.Slug, uploadDate, uploadTime, recordID, sub.Reference, string(sniffed.Kind))

	// Storage write failure is fatal for this file: no transaction record
	// may dangle on a key that was never written.
	err = o.store.Put(ctx, key, data, contentType, map[string]string{
		"record-id": recordID,
		"group-id":  groupID,
		"brand":     b.Slug,
		"reference": storage.SanitizeReference(sub.Reference),
		"checksum":  hex.EncodeToString(checksum[:]),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Storage write failed")
		result.RecordID = ""
		result.Error = pkgerrors.ErrStorageUnavailable.Error()
		return result
	}
	result.StorageKey = key
	result.Accepted = true

	initialStatus := model.StatusReceived
	if sub.IssueFlagged {
		initialStatus = model.StatusIssueReported
	}

	rec := &model.Transaction{
		RecordID:       recordID,
		GroupID:        groupID,
		BrandSlug:      b.Slug,
		UploadDate:     uploadDate,
		UploadTime:     uploadTime,
		Reference:      storage.SanitizeReference(sub.Reference),
		Location:       evidence,
		PresentedLabel: evidence.Source,
		StorageKey:     key,
		FileChecksum:   hex.EncodeToString(checksum[:]),
		OrigFilename:   file.Filename,
		ProcessStatus:  initialStatus,
	}

	// The file is already durable in storage; losing the row is degraded,
	// not fatal. The row stays recoverable by storage key.
	if err := o.repo.Upsert(ctx, rec); err != nil {
		log.Error().Err(err).Msg("Transaction upsert failed")
		o.setStatus(ctx, recordID, model.StatusErrorDB)
	}

	outcomes := o.notifier.Notify(ctx, rec, b, sub.UploaderEmail, &mail.Attachment{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        data,
	})
	rec.DriverCopySent = outcomes.Uploader.Sent

	// Second upsert persists the delivery flag; created_at from the first
	// write survives the replace.
	if err := o.repo.Upsert(ctx, rec); err != nil {
		log.Error().Err(err).Msg("Transaction upsert retry failed")
		o.setStatus(ctx, recordID, model.StatusErrorDB)
	}

	// Last error wins; each failing group overwrites the status but never
	// stops the pipeline.
	if !outcomes.Staff.Satisfied() {
		log.Warn().Msg("Staff notification failed")
		o.setStatus(ctx, recordID, model.StatusErrorStaffMail)
	}
	if !outcomes.Uploader.Satisfied() {
		log.Warn().Msg("Uploader notification failed")
		o.setStatus(ctx, recordID, model.StatusErrorUserMail)
	}

	shouldDeliver := !sub.IssueFlagged && outcomes.Staff.Satisfied() && outcomes.Uploader.Satisfied()
	if err := o.repo.Finalize(ctx, recordID, shouldDeliver); err != nil {
		log.Error().Err(err).Msg("Status finalize failed")
	}

	log.Info().
		Str("key", key).
		Str("source", string(evidence.Source)).
		Bool("delivered", shouldDeliver).
		Msg("File processed")
	return result
}

// setStatus is the best-effort status mutator: failures are logged and
// never escalated.
func (o *Orchestrator) setStatus(ctx context.Context, recordID string, status model.ProcessStatus) {
	if err := o.repo.SetStatus(ctx, recordID, status); err != nil {
		o.log.Error().Err(err).Str("record_id", recordID).Str("status", string(status)).Msg("Best-effort status update failed")
	}
}

// localClock renders the current date and time in the uploader's timezone,
// falling back to the configured default when the field is absent or bogus.
func (o *Orchestrator) localClock(tz string) (string, string) {
	if tz == "" {
		tz = o.tz
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, err = time.LoadLocation(o.tz)
		if err != nil {
			loc = time.UTC
		}
	}
	now := time.Now().In(loc)
	return now.Format("2006-01-02"), now.Format("15:04:05")
}
