package common

import (
	"math"
	"strings"
)

// placeholderKeys are values shipped in sample .env files that are never real credentials.
var placeholderKeys = []string{
	"your_api_key",
	"your_api_key_here",
	"your-api-key",
	"api_key",
	"<api_key>",
	"changeme",
	"placeholder",
	"xxx",
}

// IsPlaceholder reports whether key is empty or one of the known placeholder values.
func IsPlaceholder(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return true
	}
	return HasAny(k, placeholderKeys...)
}

// HasAny reports whether s equals any of the candidates.
func HasAny(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
