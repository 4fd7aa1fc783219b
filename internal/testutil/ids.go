package testutil

// FixedIDGenerator returns the same history ID every time.
//
// Recording the same scenario with a FixedIDGenerator produces byte-identical
// store contents, which keeps store assertions deterministic.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed history ID generator.
//
// If id is empty, Generate() returns "test-history-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-history-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
//
// Implements store.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
