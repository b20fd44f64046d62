package model

// Submission carries the form fields accompanying one upload request. One
// submission may hold several files; they share a group identifier.
type Submission struct {
	BrandSlug     string
	Reference     string
	UploaderEmail string
	IssueFlagged  bool
	Timezone      string
	ClientCoords  *Candidate
	NetworkCoords *Candidate
}

// UploadedFile is one file extracted from the multipart form.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FileResult is the per-file outcome of the intake pipeline. A rejected or
// failed file carries no transaction record.
type FileResult struct {
	RecordID   string `json:"record_id,omitempty"`
	GroupID    string `json:"group_id"`
	Filename   string `json:"filename"`
	StorageKey string `json:"storage_key,omitempty"`
	Accepted   bool   `json:"accepted"`
	Rejection  string `json:"rejection,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NotifyJob is a failed notification queued for retry by the notify worker.
type NotifyJob struct {
	RecordID  string   `json:"record_id"`
	BrandSlug string   `json:"brand_slug"`
	Group     string   `json:"group"` // "staff" or "uploader"
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	HTMLBody  string   `json:"html_body"`
	Attempts  int      `json:"attempts"`
}
