package spec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSpec is the hash domain for spec content identity.
// The version suffix allows the algorithm to migrate.
const DomainSpec = "gremlin/spec/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the content hash of s. Creation and update stamps are
// excluded, so re-inferring an identical model yields the same hash.
func Hash(s *Spec) (string, error) {
	c := *s
	c.Metadata.CreatedAt = 0
	c.Metadata.UpdatedAt = 0

	canonical, err := MarshalCanonical(&c)
	if err != nil {
		return "", fmt.Errorf("hash spec %q: %w", s.Name, err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when the spec is known to marshal.
func MustHash(s *Spec) string {
	h, err := Hash(s)
	if err != nil {
		panic(err)
	}
	return h
}
