package gitlib

import (
	"errors"
	"fmt"
	"strings"
)

// Hex lengths of the object names git produces.
const (
	// SHA1HexSize is the length of a SHA-1 object name.
	SHA1HexSize = 40
	// SHA256HexSize is the length of a SHA-256 object name.
	SHA256HexSize = 64
)

// ErrInvalidHash indicates a string that is not a full object name.
var ErrInvalidHash = errors.New("invalid commit hash")

// Hash is a commit object name in lowercase hex. It holds SHA-1 and SHA-256
// names alike, so repositories in either object format compare correctly.
type Hash string

// NewHash returns hexStr as a Hash, lowercased. It does not validate.
func NewHash(hexStr string) Hash {
	return Hash(strings.ToLower(strings.TrimSpace(hexStr)))
}

// ParseHash validates a full SHA-1 or SHA-256 object name.
func ParseHash(hexStr string) (Hash, error) {
	hash := NewHash(hexStr)

	if len(hash) != SHA1HexSize && len(hash) != SHA256HexSize {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, hexStr)
	}

	for _, char := range []byte(hash) {
		if (char < '0' || char > '9') && (char < 'a' || char > 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidHash, hexStr)
		}
	}

	return hash, nil
}

func (h Hash) String() string {
	return string(h)
}

// IsZero reports whether the hash is empty or all zeros.
func (h Hash) IsZero() bool {
	return strings.Trim(string(h), "0") == ""
}
