package geo

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
)

// ExtractGPS pulls capture-time coordinates out of image metadata.
// Best-effort by contract: any parse failure, including panics from
// malformed TIFF structures, yields nil rather than an error.
func ExtractGPS(data []byte, contentType string) (c *model.Candidate) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil
	}

	defer func() {
		if recover() != nil {
			c = nil
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return nil
	}

	cand := &model.Candidate{Lat: lat, Lon: lon}
	if tm, err := x.DateTime(); err == nil {
		ts := tm.Unix()
		cand.Timestamp = &ts
	}
	return cand
}
