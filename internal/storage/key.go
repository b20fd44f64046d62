package storage

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeReference reduces a free-text shipment reference to a
// filename-safe charset.
func SanitizeReference(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = unsafeChars.ReplaceAllString(ref, "-")
	return strings.Trim(ref, "-")
}

// BuildKey produces the deterministic, human-readable object key for a
// stored file. The record identifier is embedded so an orphaned object can
// be reconciled back to its transaction after a mid-pipeline interruption.
func BuildKey(brandSlug, uploadDate, uploadTime, recordID, reference, ext string) string {
	t := strings.ReplaceAll(uploadTime, ":", "")
	name := fmt.Sprintf("%s_%s", t, recordID)
	if ref := SanitizeReference(reference); ref != "" {
		name = fmt.Sprintf("%s_%s", name, ref)
	}
	return fmt.Sprintf("pods/%s/%s/%s.%s", brandSlug, uploadDate, name, ext)
}
