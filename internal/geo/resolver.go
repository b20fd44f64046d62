// Package geo reconciles up to three unreliable location signals into one
// authoritative coordinate with an audit trail of the raw candidates.
package geo

import (
	"math"

	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
)

// NetworkAccuracyMeters is the forced accuracy estimate for network-inferred
// coordinates, which carry no instrument-reported accuracy of their own.
const NetworkAccuracyMeters = 50000.0

// Resolve picks exactly one candidate by strict priority: capture-time EXIF
// coordinates first, browser geolocation second, network-inferred last. The
// losing candidates stay in the evidence but never influence the chosen
// value. With no usable candidate the result is an empty chosen coordinate
// tagged UNKNOWN; Resolve never fails.
func Resolve(fromMetadata, fromClient, fromNetwork *model.Candidate) model.Evidence {
	ev := model.Evidence{
		FromMetadata: normalize(fromMetadata),
		FromClient:   normalize(fromClient),
		FromNetwork:  normalize(fromNetwork),
		Source:       model.SourceUnknown,
	}

	switch {
	case ev.FromMetadata != nil:
		ev.Chosen = &model.Chosen{
			Lat:      ev.FromMetadata.Lat,
			Lon:      ev.FromMetadata.Lon,
			Accuracy: ev.FromMetadata.Accuracy,
			Source:   model.SourceEXIF,
		}
	case ev.FromClient != nil:
		ev.Chosen = &model.Chosen{
			Lat:      ev.FromClient.Lat,
			Lon:      ev.FromClient.Lon,
			Accuracy: ev.FromClient.Accuracy,
			Source:   model.SourceGPS,
		}
	case ev.FromNetwork != nil:
		acc := NetworkAccuracyMeters
		ev.Chosen = &model.Chosen{
			Lat:      ev.FromNetwork.Lat,
			Lon:      ev.FromNetwork.Lon,
			Accuracy: &acc,
			Source:   model.SourceNetwork,
		}
	}

	if ev.Chosen != nil {
		ev.Source = ev.Chosen.Source
	}
	return ev
}

// normalize treats a candidate with any non-finite coordinate as entirely
// absent. There is no partial-coordinate fallback.
func normalize(c *model.Candidate) *model.Candidate {
	if c == nil {
		return nil
	}
	if !finite(c.Lat) || !finite(c.Lon) {
		return nil
	}
	return c
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
