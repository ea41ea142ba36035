package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/commerce/backend/internal/domain/payment"
)

// ChecksumSigner produces and verifies HMAC-SHA256 signatures over
// canonicalized parameter maps. Parameters are sorted by key ascending and
// joined as "k1=v1&k2=v2&...", so the digest is independent of map insertion
// order.
type ChecksumSigner struct {
	secret []byte
}

// NewChecksumSigner creates a signer for the given shared secret.
// An empty secret is a configuration error; callers must not proceed to a
// live gateway call without one.
func NewChecksumSigner(secret string) (*ChecksumSigner, error) {
	if secret == "" {
		return nil, payment.ErrMissingSigningSecret
	}
	return &ChecksumSigner{secret: []byte(secret)}, nil
}

// Sign computes the lowercase hex HMAC-SHA256 digest over the canonical
// parameter string
func (s *ChecksumSigner) Sign(params map[string]string) string {
	return s.SignPayload([]byte(canonicalize(params)))
}

// Verify recomputes the signature for params and compares it against the
// supplied one in constant time. It fails closed: any irregularity yields
// false, never a panic to the caller.
func (s *ChecksumSigner) Verify(params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	return constantTimeEqual(s.Sign(params), signature)
}

// SignPayload computes the lowercase hex HMAC-SHA256 digest over raw bytes.
// Used for providers that sign the JSON-serialized webhook payload.
func (s *ChecksumSigner) SignPayload(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayload verifies a signature over raw bytes in constant time
func (s *ChecksumSigner) VerifyPayload(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return constantTimeEqual(s.SignPayload(payload), signature)
}

// canonicalize builds the sorted "k=v&..." string for signing
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// constantTimeEqual compares two signature strings without leaking the
// position of the first differing byte
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
