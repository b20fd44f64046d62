// Package sniff determines true file type from leading content bytes rather
// than trusting client-declared metadata.
package sniff

import "bytes"

type Kind string

const (
	KindPDF     Kind = "pdf"
	KindJPG     Kind = "jpg"
	KindPNG     Kind = "png"
	KindWEBP    Kind = "webp"
	KindHEIC    Kind = "heic"
	KindUnknown Kind = "unknown"
)

var (
	pdfMagic  = []byte("%PDF")
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
	ftypBox   = []byte("ftyp")
)

// HEIF-family brands carried in the ISO-BMFF ftyp box.
var heifBrands = [][]byte{
	[]byte("heic"), []byte("heix"), []byte("hevc"), []byte("hevx"),
	[]byte("heim"), []byte("heis"), []byte("mif1"), []byte("msf1"),
}

// Detect inspects fixed byte signatures in the leading bytes of a file.
func Detect(leading []byte) Kind {
	switch {
	case bytes.HasPrefix(leading, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(leading, pngMagic):
		return KindPNG
	case bytes.HasPrefix(leading, jpegMagic):
		return KindJPG
	case isWebP(leading):
		return KindWEBP
	case isHEIF(leading):
		return KindHEIC
	default:
		return KindUnknown
	}
}

// RIFF container: "RIFF" at 0, chunk size at 4, "WEBP" at 8.
func isWebP(b []byte) bool {
	return len(b) >= 12 && bytes.HasPrefix(b, riffMagic) && bytes.Equal(b[8:12], webpMagic)
}

// ISO-BMFF: box size at 0, "ftyp" at 4, major brand at 8.
func isHEIF(b []byte) bool {
	if len(b) < 12 || !bytes.Equal(b[4:8], ftypBox) {
		return false
	}
	brand := b[8:12]
	for _, known := range heifBrands {
		if bytes.Equal(brand, known) {
			return true
		}
	}
	return false
}

// MIMEForKind maps a sniffed kind to the content type stored alongside the
// object, overriding whatever the client declared.
func MIMEForKind(k Kind) string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindJPG:
		return "image/jpeg"
	case KindPNG:
		return "image/png"
	case KindWEBP:
		return "image/webp"
	case KindHEIC:
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
