package descriptor

import "errors"

var (
	// ErrCorruptDescriptor is returned when an opaque id cannot be split into nonce and ciphertext.
	ErrCorruptDescriptor = errors.New("corrupt descriptor")
	// ErrDecryptionFailed is returned when the payload cannot be authenticated or decoded.
	ErrDecryptionFailed = errors.New("decryption failed")
)
