// Package stamp applies brand text onto PDF output. Stamping is cosmetic:
// any failure falls back to the original bytes so the pipeline never loses a
// file over a watermark.
package stamp

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"

	"github.com/AHLJvanderPlas/Podfy-app/internal/brand"
	"github.com/AHLJvanderPlas/Podfy-app/internal/logger"
)

// Stamper brands PDF content. Implementations must be best-effort.
type Stamper interface {
	StampPDF(data []byte, b brand.Brand, recordID string) []byte
}

type PDFStamper struct {
	log zerolog.Logger
}

func NewPDFStamper() *PDFStamper {
	return &PDFStamper{log: logger.For("stamp")}
}

// StampPDF writes the brand name and record identifier as a footer
// watermark on every page. On any failure the input is returned unchanged.
func (s *PDFStamper) StampPDF(data []byte, b brand.Brand, recordID string) []byte {
	text := fmt.Sprintf("%s · %s", b.DisplayName, recordID)
	desc := "font:Helvetica, points:8, pos:bc, off:0 10, fillc:#555555, rot:0"

	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		s.log.Warn().Err(err).Str("record_id", recordID).Msg("Watermark definition failed, keeping original PDF")
		return data
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(data), &out, nil, wm, pdfmodel.NewDefaultConfiguration()); err != nil {
		s.log.Warn().Err(err).Str("record_id", recordID).Msg("PDF stamping failed, keeping original PDF")
		return data
	}
	return out.Bytes()
}
