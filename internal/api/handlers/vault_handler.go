package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/veilbox/veil/internal/api/middleware"
	"github.com/veilbox/veil/internal/crypto"
	"github.com/veilbox/veil/internal/store/postgres"
)

// SecretStore is the persistence contract the vault consumes.
type SecretStore interface {
	Upsert(ctx context.Context, name, payload string) error
	Get(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
}

// AuditLog records vault operations and serves them back for review; nil
// disables auditing.
type AuditLog interface {
	Record(ctx context.Context, operation, subject, detail string) error
	Recent(ctx context.Context, limit int) ([]postgres.AuditEntry, error)
}

// VaultHandler stores named secrets encrypted at rest. Unlike the masking
// endpoints, the vault uses the strict codec path: storing plaintext because
// the key was missing would defeat its purpose.
type VaultHandler struct {
	store  SecretStore
	audit  AuditLog
	codec  *crypto.Codec
	logger *slog.Logger
}

func NewVaultHandler(store SecretStore, audit AuditLog, codec *crypto.Codec, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{store: store, audit: audit, codec: codec, logger: logger}
}

type putSecretRequest struct {
	Value string `json:"value" validate:"required"`
}

func (h *VaultHandler) Put(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req putSecretRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.codec.EncryptStrict(req.Value)
	if err != nil {
		h.logger.Error("Vault encryption unavailable", slog.Any("error", err))
		respondError(w, http.StatusServiceUnavailable, "encryption is not configured")
		return
	}

	if err := h.store.Upsert(r.Context(), name, payload); err != nil {
		h.logger.Error("Vault write failed", slog.String("name", name), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "could not store secret")
		return
	}

	h.recordAudit(r.Context(), "vault.put", name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	payload, err := h.store.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, postgres.ErrSecretNotFound) {
			respondError(w, http.StatusNotFound, "secret not found")
			return
		}
		h.logger.Error("Vault read failed", slog.String("name", name), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "could not read secret")
		return
	}

	value, err := h.codec.DecryptStrict(payload)
	if err != nil {
		// Stored envelope no longer decrypts: key rotation without
		// re-encryption, or row corruption. Either way, surface it.
		h.logger.Error("Vault payload corrupt", slog.String("name", name), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "stored secret is unreadable")
		return
	}

	h.recordAudit(r.Context(), "vault.get", name)
	respondJSON(w, http.StatusOK, map[string]string{"value": value})
}

func (h *VaultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.store.Delete(r.Context(), name); err != nil {
		h.logger.Error("Vault delete failed", slog.String("name", name), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "could not delete secret")
		return
	}

	h.recordAudit(r.Context(), "vault.delete", name)
	w.WriteHeader(http.StatusNoContent)
}

// Audit lists the newest audit entries. Details come back decrypted by the
// repo; redaction is not needed since they never contain secret values.
func (h *VaultHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		respondJSON(w, http.StatusOK, map[string]any{"entries": []any{}})
		return
	}

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 || parsed > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	entries, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Audit listing failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "could not read audit log")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *VaultHandler) recordAudit(ctx context.Context, operation, name string) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Record(ctx, operation, name, "secret "+name); err != nil {
		h.logger.Warn("Audit record failed", slog.String("operation", operation), slog.Any("error", err))
	}
}
