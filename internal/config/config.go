// Package config holds the process-wide configuration for the veil toolkit.
// It knows nothing about the callers consuming it; components receive the
// loaded Config (or a Store wrapping it) by injection.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/scrypt"
)

// DefaultAlgorithm is the only cipher the codec speaks. The value is part of
// the wire compatibility contract and is not configurable per call.
const DefaultAlgorithm = "AES-256-CTR"

// keyDerivationSalt pins scrypt output for passphrase-derived keys. Changing
// it orphans every ciphertext produced from a passphrase.
const keyDerivationSalt = "veil.kdf.v1"

var (
	// ErrCryptoNotConfigured is returned when no encryption key has been set.
	ErrCryptoNotConfigured = errors.New("config: encryption key not configured")

	// ErrMalformedKey is returned when the stored key does not decode to 32 bytes.
	ErrMalformedKey = errors.New("config: encryption key must be 64 hex characters (32 bytes)")
)

// CryptoConfig is the snapshot handed to the codec on every call.
type CryptoConfig struct {
	Algorithm string
	SecretKey []byte
}

// Config holds all dynamic configuration for the toolkit.
type Config struct {
	Environment    string // "development" or "production"
	Port           string
	AllowedOrigins []string
	DatabaseURL    string

	Timezone         string
	DevelopmentToken string

	// WatchURLs are endpoints the reachability watcher re-probes in the
	// background. Empty means the watcher stays off.
	WatchURLs []string

	// SecretKeyHex is the AES-256 key as a 64-character hex string. It may be
	// populated directly from VEIL_ENCRYPTION_KEY or derived from
	// VEIL_ENCRYPTION_PASSPHRASE at load time.
	SecretKeyHex string
	Algorithm    string
}

// Load parses the environment and applies sensible default fallbacks.
// Secrets are validated eagerly so a malformed key fails at boot, not on the
// first encrypt call.
func Load() (*Config, error) {
	env := getEnv("VEIL_ENV", "production")

	corsOrigins := getEnv("VEIL_CORS_ALLOWED_ORIGINS", "")
	if corsOrigins == "" {
		if env == "production" {
			return nil, fmt.Errorf("config: VEIL_CORS_ALLOWED_ORIGINS is required in production")
		}
		corsOrigins = "http://localhost:5173"
	}

	tz := getEnv("VEIL_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("config: invalid VEIL_TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		Environment:      env,
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   strings.Split(corsOrigins, ","),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Timezone:         tz,
		DevelopmentToken: getEnv("VEIL_DEVELOPMENT_TOKEN", ""),
		WatchURLs:        splitList(getEnv("VEIL_WATCH_URLS", "")),
		SecretKeyHex:     getEnv("VEIL_ENCRYPTION_KEY", ""),
		Algorithm:        DefaultAlgorithm,
	}

	if cfg.SecretKeyHex == "" {
		if passphrase := getEnv("VEIL_ENCRYPTION_PASSPHRASE", ""); passphrase != "" {
			derived, err := deriveKey(passphrase)
			if err != nil {
				return nil, err
			}
			cfg.SecretKeyHex = hex.EncodeToString(derived)
		}
	}

	if cfg.SecretKeyHex != "" {
		if _, err := decodeKey(cfg.SecretKeyHex); err != nil {
			return nil, err
		}
	}

	if cfg.DevelopmentToken == "" && env == "production" {
		return nil, fmt.Errorf("config: VEIL_DEVELOPMENT_TOKEN is required in production")
	}

	return cfg, nil
}

// CryptoConfig re-reads and decodes the key on every call; the codec never
// caches key material between operations.
func (c *Config) CryptoConfig() (CryptoConfig, error) {
	if c == nil || c.SecretKeyHex == "" {
		return CryptoConfig{}, ErrCryptoNotConfigured
	}

	key, err := decodeKey(c.SecretKeyHex)
	if err != nil {
		return CryptoConfig{}, err
	}

	return CryptoConfig{Algorithm: c.Algorithm, SecretKey: key}, nil
}

func decodeKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrMalformedKey, len(key))
	}
	return key, nil
}

// deriveKey stretches a human passphrase into a 32-byte AES key.
func deriveKey(passphrase string) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), []byte(keyDerivationSalt), 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("config: key derivation failed: %w", err)
	}
	return key, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a fallback value.
// An empty value counts as unset.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
