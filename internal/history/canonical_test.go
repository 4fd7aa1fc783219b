package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"sorted keys", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"nested", map[string]any{"x": []any{true, "y", uint64(18446744073709551615)}}, `{"x":[true,"y",18446744073709551615]}`},
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"nfc normalized", "e\u0301", "\"\u00e9\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for _, in := range []any{nil, 1.5, map[string]any{"k": nil}, struct{}{}} {
		_, err := MarshalCanonical(in)
		assert.Error(t, err, "%#v", in)
	}
}

func TestEntryObject(t *testing.T) {
	got, err := MarshalCanonical(EntryObject(Entry{Node: 1, Span: Get(7, 102, 108)}))
	require.NoError(t, err)
	assert.Equal(t, `{"ack":108,"found":true,"node":1,"op":"get","req":102,"value":7}`, string(got))

	got, err = MarshalCanonical(EntryObject(Entry{Node: 0, Span: Stopped(120)}))
	require.NoError(t, err)
	assert.Equal(t, `{"ack":120,"node":0,"op":"stopped","req":120}`, string(got))
}

func TestContentHash(t *testing.T) {
	entries := []Entry{
		{Node: 0, Span: Put(8, 100, 105)},
		{Node: 1, Span: GetNil(101, 103)},
	}

	h1, err := ContentHash(2, entries)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, err := ContentHash(2, entries)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "hash must be deterministic")

	h3, err := ContentHash(3, entries)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3, "node count is part of the identity")

	h4, err := ContentHash(2, []Entry{entries[1], entries[0]})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4, "order is part of the identity")

	_, err = ContentHash(2, []Entry{{Node: 0}})
	assert.Error(t, err)
}
