// Package sanitize holds the HTML allow-list boundary all user-submitted
// rich text passes through before storage. Disallowed markup is stripped,
// not escaped: the output contains only allowed tags and text.
package sanitize

import "github.com/microcosm-cc/bluemonday"

var (
	commentPolicy = newCommentPolicy()
	postPolicy    = newPostPolicy()
)

// Comments allow inline formatting only.
func newCommentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "u")
	return p
}

// Posts additionally allow headings and lists.
func newPostPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "u",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li")
	return p
}

// Comment sanitizes comment content with the narrow inline allow-list.
func Comment(content string) string {
	return commentPolicy.Sanitize(content)
}

// Post sanitizes post content with the wider allow-list.
func Post(content string) string {
	return postPolicy.Sanitize(content)
}
