package handlers

import (
	"encoding/hex"
	"net/http"

	"github.com/veilbox/veil/internal/api/middleware"
	"github.com/veilbox/veil/internal/casing"
	"github.com/veilbox/veil/internal/crypto"
	"github.com/veilbox/veil/internal/sanitize"
)

// CodecHandler exposes the codec, masking, and casing facilities over HTTP.
// Every operation is stateless; the fail-open contract of the codec applies
// unchanged, so encrypt/decrypt never surface cipher errors to the client.
type CodecHandler struct {
	codec     *crypto.Codec
	sanitizer *sanitize.Sanitizer
}

func NewCodecHandler(codec *crypto.Codec, sanitizer *sanitize.Sanitizer) *CodecHandler {
	return &CodecHandler{codec: codec, sanitizer: sanitizer}
}

type encryptRequest struct {
	Value string `json:"value"`
	IVHex string `json:"iv,omitempty" validate:"omitempty,hexadecimal,len=32"`
}

type decryptRequest struct {
	Payload string `json:"payload" validate:"required"`
}

type treeRequest struct {
	Node       any      `json:"node"`
	Properties []string `json:"properties,omitempty"`
	IVHex      string   `json:"iv,omitempty" validate:"omitempty,hexadecimal,len=32"`
}

type nodeRequest struct {
	Node any `json:"node"`
}

func (h *CodecHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req encryptRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	iv, ok := decodeIV(req.IVHex)
	if !ok {
		respondError(w, http.StatusBadRequest, "iv must be 32 hex characters")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"payload": h.codec.EncryptWithIV(req.Value, iv),
	})
}

func (h *CodecHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	var req decryptRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"value": h.codec.Decrypt(req.Payload),
	})
}

func (h *CodecHandler) EncryptTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	iv, ok := decodeIV(req.IVHex)
	if !ok {
		respondError(w, http.StatusBadRequest, "iv must be 32 hex characters")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"node": h.codec.EncryptTreeWithIV(req.Node, req.Properties, iv),
	})
}

func (h *CodecHandler) DecryptTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"node": h.codec.DecryptTree(req.Node, req.Properties),
	})
}

func (h *CodecHandler) Sanitize(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"node": h.sanitizer.Fields(req.Node),
	})
}

func (h *CodecHandler) CamelKeys(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"node": casing.CamelKeys(req.Node),
	})
}

func (h *CodecHandler) SnakeKeys(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"node": casing.SnakeKeys(req.Node),
	})
}

// decodeIV turns the optional hex IV into bytes; empty means "generate one".
func decodeIV(ivHex string) ([]byte, bool) {
	if ivHex == "" {
		return nil, true
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != crypto.IVSize {
		return nil, false
	}
	return iv, true
}
