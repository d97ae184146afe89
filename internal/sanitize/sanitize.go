// Package sanitize strips credentials and other sensitive material from
// request data before it reaches a log line. It is a one-way masking layer;
// reversible masking lives in the crypto package.
package sanitize

import (
	"net/http"
	"strings"
	"time"
)

// Redacted replaces sensitive values in sanitized output.
const Redacted = "[REDACTED]"

// defaultSensitiveKeys are matched case-insensitively, ignoring '_' and '-',
// so password/Password/pass_word and apiKey/api_key/API-Key all hit.
var defaultSensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"accesstoken",
	"refreshtoken",
	"apikey",
	"authorization",
	"cookie",
	"setcookie",
	"sessionid",
	"privatekey",
	"clientsecret",
	"creditcard",
}

// Sanitizer masks sensitive fields in trees and headers. The zero value is
// not usable; construct with New.
type Sanitizer struct {
	keys map[string]struct{}
}

// New builds a Sanitizer covering the default sensitive key set plus any
// caller-supplied extras.
func New(extraKeys ...string) *Sanitizer {
	keys := make(map[string]struct{}, len(defaultSensitiveKeys)+len(extraKeys))
	for _, k := range defaultSensitiveKeys {
		keys[normalizeKey(k)] = struct{}{}
	}
	for _, k := range extraKeys {
		keys[normalizeKey(k)] = struct{}{}
	}
	return &Sanitizer{keys: keys}
}

// Fields returns a copy of node with every value under a sensitive key
// replaced by Redacted, whatever its type. Recursion is never pruned, so
// sensitive keys are caught at any depth. The input is not mutated.
func (s *Sanitizer) Fields(node any) any {
	switch v := node.(type) {
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = s.Fields(elem)
		}
		return out

	case map[string]any:
		if len(v) == 0 {
			return v
		}
		out := make(map[string]any, len(v))
		for key, value := range v {
			if s.sensitive(key) {
				out[key] = Redacted
				continue
			}
			out[key] = s.Fields(value)
		}
		return out

	case time.Time:
		return v

	default:
		return node
	}
}

// Header flattens an http.Header into a loggable map with sensitive header
// values masked rather than dropped, so their presence stays visible.
func (s *Sanitizer) Header(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		joined := strings.Join(values, ", ")
		if s.sensitive(name) {
			joined = MaskSecret(joined)
		}
		out[name] = joined
	}
	return out
}

func (s *Sanitizer) sensitive(key string) bool {
	_, ok := s.keys[normalizeKey(key)]
	return ok
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}

// MaskSecret keeps the first and last two characters of a secret for
// correlation and stars the rest. Short values are fully starred.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
