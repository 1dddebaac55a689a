package atlassian

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSnippets(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		term         string
		contextChars int
		want         []string
	}{
		{
			name:         "bounded window around a match",
			body:         "<p>Contact Alice Smith for help</p>",
			term:         "Alice Smith",
			contextChars: 5,
			want:         []string{"tact Alice Smith for"},
		},
		{
			name:         "case insensitive",
			body:         "<div>Reviewed by Alice</div>",
			term:         "alice",
			contextChars: 3,
			want:         []string{"by Alice"},
		},
		{
			name:         "no occurrence",
			body:         "<p>Nothing to see</p>",
			term:         "bob",
			contextChars: 10,
			want:         []string{},
		},
		{
			name:         "non-overlapping scan",
			body:         "aaa",
			term:         "aa",
			contextChars: 0,
			want:         []string{"aa"},
		},
		{
			name:         "multiple occurrences in order",
			body:         "<ul><li>bob wrote this</li><li>reviewed by Bob</li></ul>",
			term:         "bob",
			contextChars: 0,
			want:         []string{"bob", "Bob"},
		},
		{
			name:         "entities are unescaped before scanning",
			body:         "<p>R&amp;D owner: Carol</p>",
			term:         "r&d",
			contextChars: 7,
			want:         []string{"R&D owner:"},
		},
		{
			name:         "window clamped to text bounds",
			body:         "Alice",
			term:         "alice",
			contextChars: 50,
			want:         []string{"Alice"},
		},
		{
			name:         "empty term",
			body:         "<p>anything</p>",
			term:         "",
			contextChars: 5,
			want:         []string{},
		},
		{
			name:         "negative context treated as zero",
			body:         "hello Alice there",
			term:         "alice",
			contextChars: -4,
			want:         []string{"Alice"},
		},
		{
			name:         "non-ascii offsets stay aligned",
			body:         "<p>Ünïcode owner: Zoë Ångström</p>",
			term:         "zoë",
			contextChars: 2,
			want:         []string{": Zoë Å"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSnippets(tt.body, tt.term, tt.contextChars)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripMarkup_DoesNotMutateBody(t *testing.T) {
	body := "<p>Fish &amp; Chips</p>"

	stripped := StripMarkup(body)

	assert.Equal(t, " Fish & Chips ", stripped)
	assert.Equal(t, "<p>Fish &amp; Chips</p>", body)
}
