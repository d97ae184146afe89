package config

import (
	"bytes"
	"errors"
	"testing"
)

const validKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VEIL_ENV", "development")
	t.Setenv("VEIL_CORS_ALLOWED_ORIGINS", "")
	t.Setenv("VEIL_TIMEZONE", "")
	t.Setenv("VEIL_ENCRYPTION_KEY", "")
	t.Setenv("VEIL_ENCRYPTION_PASSPHRASE", "")
	t.Setenv("VEIL_DEVELOPMENT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
}

func TestLoad_DevelopmentDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected environment development, got %s", cfg.Environment)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected default timezone UTC, got %s", cfg.Timezone)
	}
	if cfg.Algorithm != DefaultAlgorithm {
		t.Errorf("Expected algorithm %s, got %s", DefaultAlgorithm, cfg.Algorithm)
	}
}

func TestLoad_Production_RequiresOrigins(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("VEIL_ENV", "production")
	t.Setenv("VEIL_DEVELOPMENT_TOKEN", "supersecret-at-least-32-chars-long-123")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted production config without CORS origins")
	}
}

func TestLoad_RejectsMalformedKey(t *testing.T) {
	cases := map[string]string{
		"not hex":   "zz06bb4c1e6d2b8f62ec71166d8997f588b3b3b1c313bbf14fcdfc9ba882827c",
		"too short": "0a06bb4c",
		"128-bit":   "0123456789abcdef0123456789abcdef",
	}

	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("VEIL_ENCRYPTION_KEY", key)

			_, err := Load()
			if !errors.Is(err, ErrMalformedKey) {
				t.Errorf("Load() error = %v, want ErrMalformedKey", err)
			}
		})
	}
}

func TestLoad_DerivesKeyFromPassphrase(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("VEIL_ENCRYPTION_PASSPHRASE", "correct horse battery staple")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	cc, err := cfg.CryptoConfig()
	if err != nil {
		t.Fatalf("CryptoConfig() failed: %v", err)
	}
	if len(cc.SecretKey) != 32 {
		t.Errorf("Derived key is %d bytes, want 32", len(cc.SecretKey))
	}

	// Derivation must be stable across loads, or old ciphertext is lost.
	again, err := Load()
	if err != nil {
		t.Fatalf("Second Load() failed: %v", err)
	}
	if again.SecretKeyHex != cfg.SecretKeyHex {
		t.Error("Passphrase derivation is not deterministic")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("VEIL_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted an unknown timezone")
	}
}

func TestCryptoConfig_ReReadsKey(t *testing.T) {
	cfg := &Config{Algorithm: DefaultAlgorithm, SecretKeyHex: validKeyHex}

	first, err := cfg.CryptoConfig()
	if err != nil {
		t.Fatalf("CryptoConfig() failed: %v", err)
	}

	// Mutating the returned slice must not poison later reads.
	first.SecretKey[0] ^= 0xff

	second, err := cfg.CryptoConfig()
	if err != nil {
		t.Fatalf("CryptoConfig() failed: %v", err)
	}
	if bytes.Equal(first.SecretKey, second.SecretKey) {
		t.Error("CryptoConfig() handed out a shared key slice")
	}
}

func TestCryptoConfig_Unconfigured(t *testing.T) {
	cfg := &Config{Algorithm: DefaultAlgorithm}

	_, err := cfg.CryptoConfig()
	if !errors.Is(err, ErrCryptoNotConfigured) {
		t.Errorf("CryptoConfig() error = %v, want ErrCryptoNotConfigured", err)
	}
}
