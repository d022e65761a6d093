package core

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint is a content-and-configuration digest used as a cache key.
// Equal inputs always produce equal fingerprints.
type Fingerprint string

// TransformSpec is the serializable configuration of a transformation. It is
// a flat bag of named parameters, excluding live handles (loggers, pools,
// clients) by construction so that two transformations with identical
// configuration are cache-equivalent.
type TransformSpec struct {
	Name   string
	Params map[string]any
}

// unstableValuePattern matches rendered runtime object references such as
// "<main.handler object at 0x7fb9f3793f50>". These differ across process
// runs and must not participate in the fingerprint.
var unstableValuePattern = regexp.MustCompile(`<[\w\s_\. ]+ at 0x[a-z0-9]+>`)

// stripUnstableValues removes rendered runtime object references from a
// serialized configuration string.
func stripUnstableValues(s string) string {
	return unstableValuePattern.ReplaceAllString(s, "")
}

// Canonical returns a deterministic string representation of the spec:
// the name followed by each parameter as key=json(value) in ascending key
// order. Unstable runtime-reference tokens inside rendered values are
// stripped. Parameter values that cannot be serialized (functions, channels)
// surface ErrConfigSerialization.
func (s TransformSpec) Canonical() (string, error) {
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(s.Name)
	for _, k := range keys {
		encoded, err := encodeParam(s.Params[k])
		if err != nil {
			return "", fmt.Errorf("%w: param %q: %v", ErrConfigSerialization, k, err)
		}
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.Write(encoded)
	}
	return stripUnstableValues(b.String()), nil
}

// encodeParam renders a parameter value as JSON without HTML escaping, so
// angle brackets survive encoding and the unstable-token pattern can match
// rendered runtime references inside values.
func encodeParam(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// TransformationFingerprint computes the cache key for applying the
// transformation described by spec to the given batch of nodes. The digest
// covers the full content of every node in batch order plus the canonical
// spec string, hashed with BLAKE2b-256. An empty batch is legal and hashes
// to the digest of the spec alone.
func TransformationFingerprint(nodes []*Node, spec TransformSpec) (Fingerprint, error) {
	config, err := spec.Canonical()
	if err != nil {
		return "", err
	}

	h, _ := blake2b.New(32, nil)
	for _, node := range nodes {
		h.Write([]byte(node.FullContent()))
	}
	h.Write([]byte(config))

	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}
