package sniff

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

// MaxUploadBytes caps accepted files at 25 MiB.
const MaxUploadBytes = 25 << 20

var allowedMIME = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"image/heif":      true,
}

var allowedExt = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".heif": true,
}

// Result carries the sniffed kind for accepted content.
type Result struct {
	Kind Kind
}

// Validate accepts content only when the sniffed kind is recognized AND the
// declared MIME type or filename extension is allow-listed. A client lying
// about content-type is caught by the signature check; a browser reporting a
// generic octet-stream for a trustworthy extension is tolerated. Returns a
// typed RejectionError, never panics.
func Validate(data []byte, declaredMIME, filename string) (Result, error) {
	if len(data) == 0 {
		return Result{Kind: KindUnknown}, errors.NewRejection(errors.RejectEmpty, "empty file")
	}
	if len(data) > MaxUploadBytes {
		return Result{Kind: KindUnknown}, errors.NewRejection(errors.RejectTooLarge,
			fmt.Sprintf("file exceeds %d bytes", MaxUploadBytes))
	}

	kind := Detect(data)
	if kind == KindUnknown {
		return Result{Kind: kind}, errors.NewRejection(errors.RejectUnsupported,
			"content does not match any supported signature")
	}

	mime := strings.ToLower(strings.TrimSpace(declaredMIME))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	ext := strings.ToLower(filepath.Ext(filename))

	if !allowedMIME[mime] && !allowedExt[ext] {
		return Result{Kind: kind}, errors.NewRejection(errors.RejectUnsupported,
			fmt.Sprintf("declared type %q and extension %q are not allowed", mime, ext))
	}

	return Result{Kind: kind}, nil
}
