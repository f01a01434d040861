package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
)

const (
	timestampSize = 8
	tagSize       = sha256.Size
)

// Sealer produces and verifies tamper-evident timestamp tokens. A token is
// the big-endian timestamp followed by an HMAC-SHA256 tag over it, encoded
// with unpadded base64url so it is safe to carry in a cookie.
type Sealer struct {
	secret []byte
}

// NewSealer creates a Sealer keyed with the given secret.
func NewSealer(secret []byte) *Sealer {
	return &Sealer{secret: secret}
}

// Seal encodes a unix timestamp into a signed token.
func (s *Sealer) Seal(timestamp int64) string {
	payload := make([]byte, timestampSize, timestampSize+tagSize)
	binary.BigEndian.PutUint64(payload, uint64(timestamp))

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	payload = mac.Sum(payload)

	return base64.RawURLEncoding.EncodeToString(payload)
}

// Unseal recovers the timestamp from a token. An absent, malformed or
// tampered token yields 0, which callers treat as "no prior grant".
func (s *Sealer) Unseal(tok string) int64 {
	if tok == "" {
		return 0
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != timestampSize+tagSize {
		return 0
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(raw[:timestampSize])
	if !hmac.Equal(mac.Sum(nil), raw[timestampSize:]) {
		return 0
	}

	return int64(binary.BigEndian.Uint64(raw[:timestampSize]))
}
