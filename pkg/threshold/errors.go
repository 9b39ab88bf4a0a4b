package threshold

import "errors"

var (
	// ErrInvalidParameters is returned by Split for an unusable (n, t) or secret size.
	ErrInvalidParameters = errors.New("invalid sharing parameters")
	// ErrInsufficientShares is returned when fewer distinct shares than the threshold are given.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrShareReconstructionFailed is returned when the given shares are inconsistent or corrupted.
	ErrShareReconstructionFailed = errors.New("share reconstruction failed")
)
