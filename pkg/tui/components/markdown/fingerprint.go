package markdown

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is a content-addressed hash of a piece of message text. The
// same text always produces the same fingerprint, so render failures and
// cached views are remembered per distinct content.
type Fingerprint [sha256.Size]byte

// FingerprintOf computes the fingerprint of text.
func FingerprintOf(text string) Fingerprint {
	return sha256.Sum256([]byte(text))
}

// String returns a short hex form for log output.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:8])
}
