package atlassian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"multibyte safe", "héllo wörld", 7, "héllo w..."},
		{"negative limit keeps input", "hello", -1, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.in, tt.n))
		})
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<h1>Release</h1><p>Owner: <strong>Alice</strong> &amp; Bob</p><ul><li>one</li><li>two</li></ul>")

	assert.Equal(t, "Release Owner: Alice & Bob one two", got)
	assert.Equal(t, "", PlainText(""))
}

func TestConvertHTMLToMarkdown(t *testing.T) {
	logger := arbor.NewLogger()

	got := ConvertHTMLToMarkdown("<h2>Scope</h2><p>Covers <strong>NB_0001</strong></p>", "", logger)

	assert.Contains(t, got, "## Scope")
	assert.Contains(t, got, "**NB")
	assert.Equal(t, "", ConvertHTMLToMarkdown("", "", logger))
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "a b & c", stripHTMLTags("<p>a</p>\n\n<p>b &amp; c</p>"))
}
