package ecommerce

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"

	"github.com/menusync/backend/internal/domain/integration"
)

// Webhook signature headers
const (
	SignatureHeaderSHA1   = "X-Square-Signature"
	SignatureHeaderSHA256 = "X-Square-Hmacsha256-Signature"
)

// HMACWebhookVerifier verifies base64(HMAC(key, notificationURL + body))
type HMACWebhookVerifier struct {
	key     []byte
	newHash func() hash.Hash
	header  string
}

// Compile-time interface check
var _ integration.WebhookVerifier = (*HMACWebhookVerifier)(nil)

// NewHMACSHA1Verifier verifies the legacy SHA-1 signature header
func NewHMACSHA1Verifier(signatureKey string) *HMACWebhookVerifier {
	return &HMACWebhookVerifier{key: []byte(signatureKey), newHash: sha1.New, header: SignatureHeaderSHA1}
}

// NewHMACSHA256Verifier verifies the SHA-256 signature header
func NewHMACSHA256Verifier(signatureKey string) *HMACWebhookVerifier {
	return &HMACWebhookVerifier{key: []byte(signatureKey), newHash: sha256.New, header: SignatureHeaderSHA256}
}

// NewWebhookVerifier selects the verifier for a configured algorithm: "sha256" or "sha1"
func NewWebhookVerifier(algorithm, signatureKey string) (*HMACWebhookVerifier, error) {
	switch strings.ToLower(algorithm) {
	case "", "sha256":
		return NewHMACSHA256Verifier(signatureKey), nil
	case "sha1":
		return NewHMACSHA1Verifier(signatureKey), nil
	default:
		return nil, fmt.Errorf("unsupported webhook signature algorithm %q", algorithm)
	}
}

// Header is the request header carrying the signature for this verifier
func (v *HMACWebhookVerifier) Header() string {
	return v.header
}

// Sign computes the expected signature
func (v *HMACWebhookVerifier) Sign(notificationURL string, body []byte) string {
	mac := hmac.New(v.newHash, v.key)
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time. An empty key or signature never verifies.
func (v *HMACWebhookVerifier) Verify(notificationURL string, body []byte, signature string) bool {
	signature = strings.TrimSpace(signature)
	if len(v.key) == 0 || signature == "" {
		return false
	}
	expected := v.Sign(notificationURL, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
