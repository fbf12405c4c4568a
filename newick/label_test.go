package newick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLabel(t *testing.T) {
	tests := []struct {
		label, want string
	}{
		{"Homo_sapiens", "Homo_sapiens"},
		{"Homo sapiens", "Homo_sapiens"},
		{"a,b", "'a,b'"},
		{"it's", "'it''s'"},
		{"x (y)", "'x (y)'"},
		{"tab\there", "'tab\there'"},
		{"'already quoted'", "'already quoted'"},
		{"'it''s'", "'it''s'"},
		{"'it's'", "'it''s'"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeLabel(tt.label), "%q", tt.label)
	}
}

func TestEscapeIdempotent(t *testing.T) {
	for _, label := range []string{
		"plain", "with space", "semi;colon", "quo'te", "'x'", "'a'b'", "[c]",
	} {
		once := EscapeLabel(label)
		assert.True(t, IsEscaped(once), "%q -> %q", label, once)
		assert.Equal(t, once, EscapeLabel(once), "%q", label)
	}
}

func TestUnescapeRoundTrip(t *testing.T) {
	for _, label := range []string{"Bubo bubo", "a,b", "it's", "x:y", "plain"} {
		assert.Equal(t, label, UnescapeLabel(EscapeLabel(label)), "%q", label)
	}
	assert.Equal(t, "it's", UnescapeLabel("'it''s'"))
	assert.Equal(t, "Homo sapiens", UnescapeLabel("Homo_sapiens"))
}

func TestIsSingleQuoted(t *testing.T) {
	assert.True(t, IsSingleQuoted("'a'"))
	assert.True(t, IsSingleQuoted("''"))
	assert.False(t, IsSingleQuoted("'"))
	assert.False(t, IsSingleQuoted("a'"))
	assert.False(t, IsSingleQuoted("plain"))
}

// Escaped labels must come back unchanged through the parser.
func TestEscapeParseRoundTrip(t *testing.T) {
	for _, label := range []string{"a,b", "it's", "(x)", "colon:here", "sq[uare]"} {
		tr, err := ParseString("(" + EscapeLabel(label) + ",other);")
		if assert.NoError(t, err, label) {
			got, _ := tr.Vertex(0).Label()
			assert.Equal(t, label, got)
		}
	}
}
