package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainHistory is the domain prefix for history content hashes.
// The version suffix allows a future encoding change.
const DomainHistory = "linearize/history/v1"

func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash computes a stable identity for a fed sequence of entries.
// Two recordings with the same node count and the same spans in the same
// order hash identically.
func ContentHash(numNodes int, entries []Entry) (string, error) {
	list := make([]any, len(entries))
	for i, e := range entries {
		if e.Span.Op == nil {
			return "", fmt.Errorf("ContentHash: entry %d has no operation", i)
		}
		list[i] = EntryObject(e)
	}
	canonical, err := MarshalCanonical(map[string]any{
		"nodes":   numNodes,
		"entries": list,
	})
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainHistory, canonical), nil
}
