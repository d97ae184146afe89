package crypto

import "time"

// allowSet gates which mapping keys get their direct string values
// transformed. A nil set permits every key; an empty set permits none.
type allowSet map[string]struct{}

func newAllowSet(keys []string) allowSet {
	if keys == nil {
		return nil
	}
	set := make(allowSet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func (a allowSet) permits(key string) bool {
	if a == nil {
		return true
	}
	_, ok := a[key]
	return ok
}

// EncryptTree walks node and encrypts string leaves that sit directly under a
// permitted mapping key. Sequences and mappings are rebuilt (the input is
// never mutated); numbers, booleans, nils and temporal values pass through
// untouched. allowed==nil means every key is permitted.
//
// The allow-list filters only whether a direct string value is encrypted; it
// does not prune recursion, so nested structures under excluded keys are
// still descended into.
func (c *Codec) EncryptTree(node any, allowed []string) any {
	return c.EncryptTreeWithIV(node, allowed, nil)
}

// EncryptTreeWithIV is EncryptTree with a fixed IV shared by every encrypted
// leaf. Test/reproducibility use only.
func (c *Codec) EncryptTreeWithIV(node any, allowed []string, iv []byte) any {
	return c.transformTree(node, newAllowSet(allowed), func(s string) string {
		return c.EncryptWithIV(s, iv)
	})
}

// DecryptTree mirrors EncryptTree. No IV parameter is needed since each
// envelope carries its own.
func (c *Codec) DecryptTree(node any, allowed []string) any {
	return c.transformTree(node, newAllowSet(allowed), c.Decrypt)
}

// transformTree is a tagged walk over the closed set of node kinds the codec
// understands: sequence, mapping, temporal, and everything else (scalar).
// String leaves are only targeted as direct mapping values; a bare top-level
// string or a string inside a sequence is a scalar here.
func (c *Codec) transformTree(node any, allowed allowSet, apply func(string) string) any {
	switch v := node.(type) {
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = c.transformTree(elem, allowed, apply)
		}
		return out

	case map[string]any:
		if len(v) == 0 {
			return v
		}
		out := make(map[string]any, len(v))
		for key, value := range v {
			if s, ok := value.(string); ok && allowed.permits(key) {
				out[key] = apply(s)
				continue
			}
			out[key] = c.transformTree(value, allowed, apply)
		}
		return out

	case time.Time:
		return v

	default:
		return node
	}
}
