package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/veilbox/veil/internal/sanitize"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a fresh 256-bit encryption key as hex",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("key generation failed: %w", err)
		}

		printPayload(hex.EncodeToString(key))
		note("Store this as VEIL_ENCRYPTION_KEY. Rotating it orphans existing ciphertext.")
		return nil
	},
}

var encryptIVHex string

var encryptCmd = &cobra.Command{
	Use:   "encrypt <value>",
	Short: "Encrypt a single value into a portable envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := loadCodec()
		if err != nil {
			return err
		}

		if encryptIVHex != "" {
			iv, err := hex.DecodeString(encryptIVHex)
			if err != nil || len(iv) != 16 {
				return fmt.Errorf("--iv must be 32 hex characters")
			}
			note("Fixed IVs produce deterministic ciphertext; use for testing only.")
			printPayload(codec.EncryptWithIV(args[0], iv))
			return nil
		}

		payload, err := codec.EncryptStrict(args[0])
		if err != nil {
			return err
		}
		printPayload(payload)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <payload>",
	Short: "Decrypt an envelope back to its original value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := loadCodec()
		if err != nil {
			return err
		}

		value, err := codec.DecryptStrict(args[0])
		if err != nil {
			return err
		}
		printPayload(value)
		return nil
	},
}

var maskCmd = &cobra.Command{
	Use:   "mask [json]",
	Short: "Redact sensitive fields from a JSON document (reads stdin without an argument)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		if len(args) == 1 {
			raw = []byte(args[0])
		} else {
			var err error
			raw, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		var node any
		if err := json.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("input is not valid JSON: %w", err)
		}

		masked, err := json.MarshalIndent(sanitize.New().Fields(node), "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(masked))
		return nil
	},
}

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the veil API from the development token secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv("VEIL_DEVELOPMENT_TOKEN")
		if secret == "" {
			return fmt.Errorf("VEIL_DEVELOPMENT_TOKEN is not set")
		}

		now := time.Now()
		claims := jwt.RegisteredClaims{
			Issuer:    "veilctl",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			ID:        uuid.New().String(),
		}

		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		printPayload(signed)
		return nil
	},
}

func init() {
	encryptCmd.Flags().StringVar(&encryptIVHex, "iv", "", "fixed IV as 32 hex characters (testing only)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}
