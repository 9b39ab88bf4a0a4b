package stealth

import "errors"

var (
	// ErrInvalidPublicKey is returned when a key does not decode to a valid point of the curve.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidPrivateKey is returned when a private key is not a non-zero scalar.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrDegenerateScalar is returned when a derived scalar or point is zero.
	ErrDegenerateScalar = errors.New("derived scalar is zero")
)
