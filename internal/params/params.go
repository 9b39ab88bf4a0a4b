package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	BytesScalar       = 32
	BytesPoint        = 33
	BytesUncompressed = 65
	BytesCoordinates  = 64
	BytesAddress      = 20

	// BytesChunk is the size of the pieces a secret is cut into before sharing.
	// 2¹²⁸ is far below the secp256k1 group order, so a chunk always fits in a scalar
	// without reduction.
	BytesChunk = 16

	BytesSymmetricKey = 32
	BytesNonce        = 24
	BytesTag          = 16

	BytesSetID    = 16
	BytesChecksum = 16

	// MaxSecretBytes bounds the size of a secret given to the threshold scheme.
	MaxSecretBytes = 4096
	// MaxShares is the largest n in an (n, t) split, since indices are a single byte.
	MaxShares = 255

	Decimals = 18
)
