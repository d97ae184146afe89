// Package crypto implements reversible string encryption for masking data in
// logs and storage.
//
// Values are encrypted with AES-256-CTR and wrapped in an envelope of the form
// {"iv":"<hex>","content":"<hex>"}, JSON-serialised and base64-encoded. That
// exact shape is the wire compatibility contract: ciphertext produced by any
// prior deployment must keep decrypting here byte-for-byte.
//
// The public Encrypt/Decrypt surface is fail-open: on any failure (missing
// configuration, malformed payload, cipher error) the original input string is
// returned unchanged instead of an error. The codec is a best-effort masking
// utility and must never break the caller's data flow. Callers that need to
// know whether a value was actually transformed should compare input and
// output.
package crypto
