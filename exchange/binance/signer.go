package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

//
// Signer computes the proof-of-possession attached to signed requests. Implementations must be
// deterministic: the same payload and secret always produce the same signature.
//
type Signer interface {
	Sign(payload string, secret string) string
}

//
// DigestSigner hashes the canonical payload and the secret together:
//
//   hex(SHA-256(payload + "|" + secret))
//
// The result is always 64 lowercase hex characters.
//
type DigestSigner struct{}

func (DigestSigner) Sign(payload string, secret string) string {
	sum := sha256.Sum256([]byte(payload + "|" + secret))
	return hex.EncodeToString(sum[:])
}

//
// HMACSigner keys an HMAC-SHA256 of the canonical payload with the secret, which is what the
// production Binance endpoints verify. The result is always 64 lowercase hex characters.
//
type HMACSigner struct{}

func (HMACSigner) Sign(payload string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))

	return hex.EncodeToString(mac.Sum(nil))
}
