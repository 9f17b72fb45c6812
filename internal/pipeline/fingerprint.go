package pipeline

import (
	"crypto/sha1"
	"encoding/hex"
)

// fingerprintLen is the hex-digit length of a candidate identifier. The
// truncation trades collision resistance for compact keys; colliding URLs are
// deliberately treated as the same candidate.
const fingerprintLen = 12

// Fingerprint returns the deduplication identity of a URL string.
func Fingerprint(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
