package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentAllowsInlineFormatting(t *testing.T) {
	out := Comment("<p>hello <strong>bold</strong> and <em>italic</em></p>")
	assert.Equal(t, "<p>hello <strong>bold</strong> and <em>italic</em></p>", out)
}

func TestCommentStripsScriptsAndAttributes(t *testing.T) {
	out := Comment(`<p onclick="steal()">hi</p><script>alert(1)</script>`)
	assert.Equal(t, "<p>hi</p>", out)

	out = Comment(`<a href="https://evil.example">link</a>`)
	assert.Equal(t, "link", out)
}

func TestCommentStripsBlockElements(t *testing.T) {
	// Headings are post-only markup
	out := Comment("<h1>big</h1><p>small</p>")
	assert.Equal(t, "big<p>small</p>", out)
}

func TestPostAllowsHeadingsAndLists(t *testing.T) {
	in := "<h2>Title</h2><ul><li>one</li><li>two</li></ul>"
	assert.Equal(t, in, Post(in))
}

func TestPostStripsImagesAndScripts(t *testing.T) {
	out := Post(`<p>text</p><img src="https://cdn.example.com/a.png"><script>x()</script>`)
	assert.Equal(t, "<p>text</p>", out)
}
