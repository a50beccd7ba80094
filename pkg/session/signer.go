package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// MinSecretLength is the shortest secret WithSecret accepts.
const MinSecretLength = 32

// signer authenticates cookie values with HMAC-SHA256.
// A signed value has the form base64(value).base64(mac).
type signer struct {
	secret []byte
}

func (s signer) sign(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(s.mac([]byte(value)))
}

func (s signer) verify(raw string) (string, error) {
	encoded, encodedSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSignature
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadSignature
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrBadSignature
	}
	if !hmac.Equal(sig, s.mac(value)) {
		return "", ErrBadSignature
	}
	return string(value), nil
}

func (s signer) mac(value []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(value)
	return h.Sum(nil)
}
