package handlers

import "net/http"

// HealthHandler reports liveness plus whether encryption is usable, without
// ever leaking key material.
type HealthHandler struct {
	cryptoReady func() bool
}

func NewHealthHandler(cryptoReady func() bool) *HealthHandler {
	return &HealthHandler{cryptoReady: cryptoReady}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"crypto_ready": h.cryptoReady(),
	})
}
