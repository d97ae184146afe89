package sanitize

import (
	"fmt"

	"github.com/Jeffail/gabs/v2"
)

// FieldPath addresses one field inside a JSON document, outermost key first.
type FieldPath []string

// RedactJSON replaces the value at each existing path with Redacted and
// returns the re-serialised document. Missing paths are skipped silently;
// redaction lists are written against many payload shapes at once.
func RedactJSON(raw []byte, paths []FieldPath) ([]byte, error) {
	doc, err := gabs.ParseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("sanitize: invalid JSON: %w", err)
	}

	for _, path := range paths {
		if !doc.Exists(path...) {
			continue
		}
		if _, err := doc.Set(Redacted, path...); err != nil {
			return nil, fmt.Errorf("sanitize: redacting %v: %w", path, err)
		}
	}

	return doc.Bytes(), nil
}

// SelectJSON keeps only the supplied paths, dropping everything else. It is
// the allow-list complement of RedactJSON for payloads where most fields are
// sensitive.
func SelectJSON(raw []byte, paths []FieldPath) ([]byte, error) {
	doc, err := gabs.ParseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("sanitize: invalid JSON: %w", err)
	}

	out := gabs.New()
	for _, path := range paths {
		if !doc.Exists(path...) {
			continue
		}
		if _, err := out.Set(doc.Search(path...).Data(), path...); err != nil {
			return nil, fmt.Errorf("sanitize: selecting %v: %w", path, err)
		}
	}

	return out.Bytes(), nil
}
