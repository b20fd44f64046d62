package sniff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

func pdfBytes() []byte  { return []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n") }
func jpegBytes() []byte { return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'} }
func pngBytes() []byte {
	return []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
}
func webpBytes() []byte {
	b := []byte("RIFF")
	b = append(b, 0x24, 0x00, 0x00, 0x00)
	return append(b, []byte("WEBPVP8 ")...)
}
func heicBytes() []byte {
	b := []byte{0x00, 0x00, 0x00, 0x18}
	b = append(b, []byte("ftypheic")...)
	return append(b, 0x00, 0x00, 0x00, 0x00)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"pdf", pdfBytes(), KindPDF},
		{"jpeg", jpegBytes(), KindJPG},
		{"png", pngBytes(), KindPNG},
		{"webp", webpBytes(), KindWEBP},
		{"heic", heicBytes(), KindHEIC},
		{"heif mif1 brand", append([]byte{0, 0, 0, 0x18}, []byte("ftypmif1....")...), KindHEIC},
		{"plain text", []byte("hello world, definitely not a POD"), KindUnknown},
		{"riff but not webp", append([]byte("RIFF\x24\x00\x00\x00"), []byte("WAVE")...), KindUnknown},
		{"ftyp but not heif", append([]byte{0, 0, 0, 0x18}, []byte("ftypisom....")...), KindUnknown},
		{"empty", nil, KindUnknown},
		{"truncated jpeg marker", []byte{0xFF, 0xD8}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.data))
		})
	}
}

func TestValidateAcceptsSniffedContentOverDeclaredType(t *testing.T) {
	// Mismatched MIME is tolerated when the extension is trustworthy.
	res, err := Validate(pdfBytes(), "application/octet-stream", "pod.pdf")
	require.NoError(t, err)
	assert.Equal(t, KindPDF, res.Kind)

	// Allow-listed MIME with a useless filename is fine too.
	res, err = Validate(jpegBytes(), "image/jpeg", "upload")
	require.NoError(t, err)
	assert.Equal(t, KindJPG, res.Kind)

	// MIME parameters are ignored.
	_, err = Validate(pngBytes(), "image/png; charset=binary", "x.png")
	assert.NoError(t, err)
}

func TestValidateRejectsUnrecognizedContent(t *testing.T) {
	// Allow-listed declared MIME never rescues content with no known
	// signature.
	_, err := Validate([]byte("<html>payload</html>"), "application/pdf", "pod.pdf")
	require.Error(t, err)
	rej, ok := errors.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, errors.RejectUnsupported, rej.Reason)
}

func TestValidateRejectsDisallowedDeclaration(t *testing.T) {
	// Real PDF content, but neither MIME nor extension on the allow-list.
	_, err := Validate(pdfBytes(), "application/octet-stream", "pod.exe")
	require.Error(t, err)
	rej, ok := errors.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, errors.RejectUnsupported, rej.Reason)
}

func TestValidateRejectsEmpty(t *testing.T) {
	_, err := Validate(nil, "application/pdf", "pod.pdf")
	require.Error(t, err)
	rej, ok := errors.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, errors.RejectEmpty, rej.Reason)
}

func TestValidateRejectsOversized(t *testing.T) {
	big := bytes.Repeat([]byte{0x00}, MaxUploadBytes+1)
	copy(big, pdfBytes())

	_, err := Validate(big, "application/pdf", "pod.pdf")
	require.Error(t, err)
	rej, ok := errors.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, errors.RejectTooLarge, rej.Reason)
}

func TestMIMEForKind(t *testing.T) {
	assert.Equal(t, "application/pdf", MIMEForKind(KindPDF))
	assert.Equal(t, "image/jpeg", MIMEForKind(KindJPG))
	assert.Equal(t, "application/octet-stream", MIMEForKind(KindUnknown))
}
