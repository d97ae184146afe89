package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/veilbox/veil/internal/config"
)

// IVSize is the counter-mode initialisation vector length in bytes. Like the
// key size, it is a contract constant, not a per-call option.
const IVSize = 16

var (
	// ErrBadIV is returned internally when a caller-supplied IV is not 16 bytes.
	ErrBadIV = errors.New("crypto: iv must be exactly 16 bytes")

	// ErrUnsupportedAlgorithm is returned when the configured algorithm is not
	// the one this codec speaks.
	ErrUnsupportedAlgorithm = errors.New("crypto: unsupported algorithm")
)

// ConfigProvider supplies the key material for each operation. The codec
// deliberately re-reads it on every call instead of caching.
type ConfigProvider interface {
	CryptoConfig() (config.CryptoConfig, error)
}

// envelope is the on-the-wire representation of one encrypted value.
type envelope struct {
	IV      string `json:"iv"`
	Content string `json:"content"`
}

// Codec performs symmetric encryption and decryption of single string values.
// It holds no state beyond its configuration source and is safe for
// concurrent use.
type Codec struct {
	provider ConfigProvider
}

func NewCodec(provider ConfigProvider) *Codec {
	return &Codec{provider: provider}
}

// Encrypt encrypts text under a fresh random IV. On any failure it returns
// text unchanged (fail-open).
func (c *Codec) Encrypt(text string) string {
	return c.EncryptWithIV(text, nil)
}

// EncryptWithIV encrypts text under the supplied 16-byte IV, generating a
// random one when iv is nil. Fixing the IV makes the ciphertext deterministic;
// that is only sane for reproducibility in tests, since key+IV reuse in
// counter mode leaks keystream. On any failure it returns text unchanged.
func (c *Codec) EncryptWithIV(text string, iv []byte) string {
	out, err := c.encryptValue(text, iv)
	if err != nil {
		return text
	}
	return out
}

// Decrypt reverses Encrypt. On any failure (malformed base64 or JSON, bad
// hex, missing configuration) it returns payload unchanged.
func (c *Codec) Decrypt(payload string) string {
	out, err := c.decryptValue(payload)
	if err != nil {
		return payload
	}
	return out
}

// EncryptStrict is the result-bearing variant for callers that must not fall
// back to plaintext, such as storage writers. Masking callers want Encrypt.
func (c *Codec) EncryptStrict(text string) (string, error) {
	return c.encryptValue(text, nil)
}

// DecryptStrict is the result-bearing variant of Decrypt.
func (c *Codec) DecryptStrict(payload string) (string, error) {
	return c.decryptValue(payload)
}

// encryptValue is the result-bearing branch behind Encrypt. Keeping the error
// visible here lets tests assert which path was taken before the fail-open
// boundary collapses it.
func (c *Codec) encryptValue(text string, iv []byte) (string, error) {
	stream, err := c.newStream(&iv)
	if err != nil {
		return "", err
	}

	content := make([]byte, len(text))
	stream.XORKeyStream(content, []byte(text))

	wrapped, err := json.Marshal(envelope{
		IV:      hex.EncodeToString(iv),
		Content: hex.EncodeToString(content),
	})
	if err != nil {
		return "", fmt.Errorf("crypto: envelope encoding failed: %w", err)
	}

	return base64.StdEncoding.EncodeToString(wrapped), nil
}

func (c *Codec) decryptValue(payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("crypto: payload is not base64: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("crypto: payload is not an envelope: %w", err)
	}

	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return "", fmt.Errorf("crypto: malformed iv: %w", err)
	}
	if len(iv) != IVSize {
		return "", ErrBadIV
	}

	content, err := hex.DecodeString(env.Content)
	if err != nil {
		return "", fmt.Errorf("crypto: malformed content: %w", err)
	}

	stream, err := c.newStreamWithIV(iv)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(content))
	stream.XORKeyStream(plaintext, content)

	return string(plaintext), nil
}

// newStream builds a CTR stream, filling *iv with random bytes when the
// caller did not supply one.
func (c *Codec) newStream(iv *[]byte) (cipher.Stream, error) {
	if *iv == nil {
		fresh := make([]byte, IVSize)
		if _, err := io.ReadFull(rand.Reader, fresh); err != nil {
			return nil, fmt.Errorf("crypto: iv generation failed: %w", err)
		}
		*iv = fresh
	}
	return c.newStreamWithIV(*iv)
}

func (c *Codec) newStreamWithIV(iv []byte) (cipher.Stream, error) {
	if len(iv) != IVSize {
		return nil, ErrBadIV
	}

	cfg, err := c.provider.CryptoConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Algorithm != config.DefaultAlgorithm {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}

	block, err := aes.NewCipher(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: block cipher failure: %w", err)
	}

	// Counter mode: no padding, symmetric construction for both directions.
	return cipher.NewCTR(block, iv), nil
}
