package model

// SourceTag identifies which signal produced the chosen coordinate.
type SourceTag string

const (
	SourceEXIF    SourceTag = "EXIF"
	SourceGPS     SourceTag = "GPS"
	SourceNetwork SourceTag = "NETWORK"
	SourceUnknown SourceTag = "UNKNOWN"
)

// Candidate is one raw location signal. A nil *Candidate means the signal
// was absent. Accuracy is nil when the instrument reported none, which is
// distinct from a known coarse accuracy.
type Candidate struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Accuracy  *float64 `json:"accuracy_m,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
}

// Chosen is the single authoritative coordinate selected from the candidates.
type Chosen struct {
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Accuracy *float64  `json:"accuracy_m,omitempty"`
	Source   SourceTag `json:"source"`
}

// Evidence retains every candidate for audit alongside the chosen coordinate.
// Chosen is nil when no candidate carried a full coordinate pair; Source is
// then SourceUnknown.
type Evidence struct {
	FromMetadata *Candidate `json:"from_metadata,omitempty"`
	FromClient   *Candidate `json:"from_client,omitempty"`
	FromNetwork  *Candidate `json:"from_network,omitempty"`
	Chosen       *Chosen    `json:"chosen,omitempty"`
	Source       SourceTag  `json:"source"`
}
