package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeReference(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"canonical form", "/files/42", "/files/42", true},
		{"missing leading slash", "files/42", "/files/42", true},
		{"trailing slash", "/files/42/", "/files/42", true},
		{"absolute url", "https://signage.example.com/files/42", "/files/42", true},
		{"absolute url with port", "http://10.0.0.5:8080/files/7", "/files/7", true},
		{"surrounding whitespace", "  /files/42  ", "/files/42", true},
		{"empty", "", "", false},
		{"not a file path", "/api/v1/displays/3", "", false},
		{"non-numeric id", "/files/abc", "", false},
		{"bare marker", "/files/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalizeReference(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractReferencesSlider(t *testing.T) {
	doc := `{
		"type": "slider",
		"interval": 5,
		"images": ["/files/1", "https://cdn.example.com/files/2", "files/3"],
		"videos": ["/files/4", 17, null]
	}`

	refs := ExtractReferences(doc)
	assert.Equal(t, map[string]struct{}{
		"/files/1": {}, "/files/2": {}, "/files/3": {}, "/files/4": {},
	}, refs)
}

func TestExtractReferencesEscalationBoard(t *testing.T) {
	doc := `{"type":"escalation-board","images":["/files/9"],"videos":["/files/10"]}`

	refs := ExtractReferences(doc)
	assert.Contains(t, refs, "/files/9")
	assert.NotContains(t, refs, "/files/10", "escalation boards only scan images")
}

func TestExtractReferencesUnknownTypeIsEmpty(t *testing.T) {
	assert.Empty(t, ExtractReferences(`{"type":"chart","series":[1,2,3]}`))
	assert.Empty(t, ExtractReferences(`{"type":"comparison-table","rows":[]}`))
	assert.Empty(t, ExtractReferences(`{"type":"hologram","images":["/files/5"]}`))
	assert.Empty(t, ExtractReferences(`{"images":["/files/5"]}`))
}

func TestExtractReferencesMalformedDoc(t *testing.T) {
	assert.Empty(t, ExtractReferences(`{broken`))
	assert.Empty(t, ExtractReferences(``))
	assert.Empty(t, ExtractReferences(`[1,2,3]`))
}

func TestExtractReferencesDeduplicates(t *testing.T) {
	doc := `{"type":"slider","images":["/files/1","files/1/"],"videos":["http://x/files/1"]}`
	assert.Len(t, ExtractReferences(doc), 1)
}
