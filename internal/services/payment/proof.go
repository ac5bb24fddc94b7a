package payment

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

const MaxProofSize = 5 << 20

var (
	ErrProofType     = errors.New("proof of payment must be a PDF, PNG or JPEG file")
	ErrProofTooLarge = errors.New("proof of payment must not exceed 5MB")
	ErrProofEmpty    = errors.New("proof of payment file is empty")
)

var allowedProofTypes = []string{"application/pdf", "image/png", "image/jpeg"}

// ValidateProof checks an upload before it leaves the client. The type is taken from the
// content, not the file name.
func ValidateProof(filename string, data []byte) error {
	if len(data) == 0 {
		return ErrProofEmpty
	}
	if len(data) > MaxProofSize {
		return errors.Wrapf(ErrProofTooLarge, "%s is %.1fMB", filename, float64(len(data))/(1<<20))
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedProofTypes...) {
		return errors.Wrapf(ErrProofType, "%s looks like %s", filename, mt.String())
	}
	return nil
}
