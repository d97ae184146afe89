package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/veilbox/veil/internal/reachability"
)

// RequireReachableURL verifies that the named JSON body field holds a URL
// that currently accepts connections, before the handler runs. The body is
// buffered and restored for downstream decoding.
func RequireReachableURL(checker *reachability.Checker, field string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, `{"message": "Unreadable body"}`, http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var doc map[string]any
			if err := json.Unmarshal(body, &doc); err != nil {
				http.Error(w, `{"message": "Malformed JSON body"}`, http.StatusBadRequest)
				return
			}

			rawURL, ok := doc[field].(string)
			if !ok || rawURL == "" {
				http.Error(w, `{"message": "Missing URL field"}`, http.StatusBadRequest)
				return
			}

			result, err := checker.Check(r.Context(), rawURL)
			if err != nil {
				http.Error(w, `{"message": "URL cannot be probed"}`, http.StatusBadRequest)
				return
			}
			if !result.Reachable {
				http.Error(w, `{"message": "URL is not reachable"}`, http.StatusUnprocessableEntity)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
