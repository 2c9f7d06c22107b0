package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature authenticates a raw webhook body against the shared secret.
// The signature header has the form "ts=<unix-seconds>,v1=<hex-digest>" and
// the digest is HMAC-SHA256(secret, "<ts>.<body>"). Comparison is constant
// time via hmac.Equal.
func VerifySignature(payload []byte, signatureHeader, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrSecretNotConfigured
	}

	ts, v1 := parseSignatureHeader(signatureHeader)
	if ts == "" || v1 == "" {
		return ErrAuthentication
	}

	provided, err := hex.DecodeString(strings.ToLower(v1))
	if err != nil {
		return ErrAuthentication
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return ErrAuthentication
	}
	return nil
}

func parseSignatureHeader(header string) (ts, v1 string) {
	for _, part := range strings.Split(strings.TrimSpace(header), ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	return ts, v1
}
