package model

import "time"

type ProcessStatus string

const (
	StatusReceived       ProcessStatus = "RECEIVED"
	StatusIssueReported  ProcessStatus = "ISSUE_REPORTED"
	StatusErrorDB        ProcessStatus = "ERROR_DB"
	StatusErrorStaffMail ProcessStatus = "ERROR_STAFF_MAIL"
	StatusErrorUserMail  ProcessStatus = "ERROR_USER_MAIL"
	StatusError          ProcessStatus = "ERROR"
	StatusDelivered      ProcessStatus = "DELIVERED"
)

// Transaction is the durable unit of record, one row per processed file.
// CreatedAt is set on first insert and preserved across upserts of the same
// RecordID; every other column is replaced by the latest upsert.
type Transaction struct {
	RecordID       string        `json:"record_id" db:"record_id"`
	GroupID        string        `json:"group_id" db:"group_id"`
	BrandSlug      string        `json:"brand_slug" db:"brand_slug"`
	UploadDate     string        `json:"upload_date" db:"upload_date"`
	UploadTime     string        `json:"upload_time" db:"upload_time"`
	Reference      string        `json:"reference,omitempty" db:"reference"`
	Location       Evidence      `json:"location" db:"location_evidence"`
	PresentedLabel SourceTag     `json:"presented_label" db:"presented_label"`
	StorageKey     string        `json:"storage_key" db:"storage_key"`
	FileChecksum   string        `json:"file_checksum" db:"file_checksum"`
	OrigFilename   string        `json:"orig_filename,omitempty" db:"orig_filename"`
	ProcessStatus  ProcessStatus `json:"process_status" db:"process_status"`
	DriverCopySent bool          `json:"driver_copy_sent" db:"driver_copy_sent"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}
