package htmlprocessor

import "github.com/edgecomet/faleproxy/internal/common/wordrule"

// Document is a parsed HTML page owned by a single request.
// Implementations are not safe for concurrent use.
type Document interface {
	// Title returns the text content of the first <title> element,
	// untrimmed. Returns empty string if there is none.
	Title() string

	// Rewrite applies rule to the page text in place. Attribute values,
	// tag names and comments are never passed to the rule, and the element
	// skeleton is left as it was; only text node payloads change.
	Rewrite(rule *wordrule.Rule, opts RewriteOptions) RewriteStats

	// HTML re-serializes the current tree.
	HTML() ([]byte, error)
}

// RewriteOptions tunes Rewrite.
type RewriteOptions struct {
	// SkipTags lists elements whose text is left untouched (e.g. "script").
	SkipTags []string
}

// RewriteStats counts nodes changed by Rewrite.
type RewriteStats struct {
	// TextNodes is the number of text nodes rewritten on their own.
	TextNodes int
	// Elements is the number of title, heading or anchor elements whose
	// text still contained an occurrence split across child nodes.
	Elements int
}

// Changed reports whether Rewrite modified anything.
func (s RewriteStats) Changed() bool {
	return s.TextNodes > 0 || s.Elements > 0
}
