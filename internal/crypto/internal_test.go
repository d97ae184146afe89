package crypto

import (
	"errors"
	"testing"

	"github.com/veilbox/veil/internal/config"
)

// These tests reach behind the fail-open boundary to make sure the internal
// result-bearing functions report the real cause before it is swallowed.

func TestEncryptValue_ReportsMissingConfiguration(t *testing.T) {
	codec := NewCodec(config.NewStore())

	_, err := codec.encryptValue("value", nil)
	if !errors.Is(err, config.ErrNotSet) {
		t.Errorf("encryptValue error = %v, want config.ErrNotSet", err)
	}
}

func TestEncryptValue_ReportsBadIV(t *testing.T) {
	codec := NewCodec(&config.Config{
		Algorithm:    config.DefaultAlgorithm,
		SecretKeyHex: "0a06bb4c1e6d2b8f62ec71166d8997f588b3b3b1c313bbf14fcdfc9ba882827c",
	})

	_, err := codec.encryptValue("value", []byte{0x01})
	if !errors.Is(err, ErrBadIV) {
		t.Errorf("encryptValue error = %v, want ErrBadIV", err)
	}
}

func TestDecryptValue_ReportsNonEnvelopePayload(t *testing.T) {
	codec := NewCodec(&config.Config{
		Algorithm:    config.DefaultAlgorithm,
		SecretKeyHex: "0a06bb4c1e6d2b8f62ec71166d8997f588b3b3b1c313bbf14fcdfc9ba882827c",
	})

	if _, err := codec.decryptValue("not-base64-or-json"); err == nil {
		t.Error("decryptValue accepted a payload that is neither base64 nor JSON")
	}
}

func TestNewStream_RejectsForeignAlgorithm(t *testing.T) {
	codec := NewCodec(&config.Config{
		Algorithm:    "AES-256-GCM",
		SecretKeyHex: "0a06bb4c1e6d2b8f62ec71166d8997f588b3b3b1c313bbf14fcdfc9ba882827c",
	})

	_, err := codec.encryptValue("value", nil)
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("encryptValue error = %v, want ErrUnsupportedAlgorithm", err)
	}
}
