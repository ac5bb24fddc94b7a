package payment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	pdfBytes  = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), make([]byte, 32)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 32)...)
)

func TestValidateProof(t *testing.T) {
	require.NoError(t, ValidateProof("receipt.pdf", pdfBytes))
	require.NoError(t, ValidateProof("receipt.png", pngBytes))
	require.NoError(t, ValidateProof("receipt.jpg", jpegBytes))

	err := ValidateProof("receipt.gif", gifBytes)
	require.ErrorIs(t, err, ErrProofType)
	require.Contains(t, err.Error(), "image/gif")

	// Renaming does not help: the content decides.
	require.ErrorIs(t, ValidateProof("receipt.pdf", gifBytes), ErrProofType)

	big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte{' '}, 8<<20)...)
	err = ValidateProof("statement.pdf", big)
	require.ErrorIs(t, err, ErrProofTooLarge)
	require.Contains(t, err.Error(), "statement.pdf")

	require.ErrorIs(t, ValidateProof("empty.pdf", nil), ErrProofEmpty)
}
