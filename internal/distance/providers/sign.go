// Package providers adapts routing APIs to distance.MatrixFetcher.
package providers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"strings"
)

var errInvalidSecret = errors.New("signing secret is not valid base64")

// SignURL returns the URL signature for pathAndQuery, e.g.
// "/maps/api/distancematrix/json?origins=...". The secret is base64 encoded
// with either the URL-safe or the standard alphabet. The signature is an
// HMAC-SHA1 digest in URL-safe base64 without padding.
func SignURL(pathAndQuery, secret string) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha1.New, key)
	mac.Write([]byte(pathAndQuery))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return nil, errInvalidSecret
	}
	if key, err := base64.URLEncoding.DecodeString(s); err == nil {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil {
		return key, nil
	}
	// Secrets are sometimes stored with the padding stripped.
	if key, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "=")); err == nil {
		return key, nil
	}
	return nil, errInvalidSecret
}
