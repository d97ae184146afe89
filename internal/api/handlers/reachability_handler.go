package handlers

import (
	"errors"
	"net/http"

	"github.com/veilbox/veil/internal/api/middleware"
	"github.com/veilbox/veil/internal/reachability"
)

type ReachabilityHandler struct {
	checker *reachability.Checker
}

func NewReachabilityHandler(checker *reachability.Checker) *ReachabilityHandler {
	return &ReachabilityHandler{checker: checker}
}

type checkRequest struct {
	URL string `json:"url" validate:"required"`
}

func (h *ReachabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.checker.Check(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, reachability.ErrUnsupportedScheme) {
			respondError(w, http.StatusBadRequest, "only http(s) and ws(s) URLs are supported")
			return
		}
		respondError(w, http.StatusBadRequest, "URL cannot be probed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"reachable":  result.Reachable,
		"status":     result.StatusCode,
		"latency_ms": result.Latency.Milliseconds(),
	})
}
