package htmlprocessor

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/edgecomet/faleproxy/internal/common/wordrule"
)

// textContentElements are rewritten a second time as a whole, after their
// text nodes, to catch an occurrence split across inline children
// (e.g. <h1>Ya<em>le</em></h1>).
var textContentElements = map[string]bool{
	"title": true,
	"h1":    true,
	"h2":    true,
	"h3":    true,
	"h4":    true,
	"h5":    true,
	"h6":    true,
	"a":     true,
}

func (d *domDocument) Rewrite(rule *wordrule.Rule, opts RewriteOptions) RewriteStats {
	skip := make(map[string]bool, len(opts.SkipTags))
	for _, tag := range opts.SkipTags {
		skip[strings.ToLower(strings.TrimSpace(tag))] = true
	}

	var stats RewriteStats

	for _, n := range collectTextNodes(d.root, skip) {
		if replaced := rule.Apply(n.Data); replaced != n.Data {
			n.Data = replaced
			stats.TextNodes++
		}
	}

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if skip[tag] {
				return
			}
			if textContentElements[tag] && rewriteElementText(n, rule, skip) {
				stats.Elements++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(d.root)

	return stats
}

// rewriteElementText applies rule to the element's full text content and
// writes the result back over the existing text nodes. Returns false when
// the text content is unchanged.
func rewriteElementText(el *html.Node, rule *wordrule.Rule, skip map[string]bool) bool {
	nodes := collectTextNodes(el, skip)
	if len(nodes) == 0 {
		return false
	}

	segments := make([]string, len(nodes))
	for i, n := range nodes {
		segments[i] = n.Data
	}

	full := strings.Join(segments, "")
	if rule.Apply(full) == full {
		return false
	}

	for _, v := range rule.Variants() {
		segments = replaceAcross(segments, v.Find, v.Replace)
	}
	for i, n := range nodes {
		n.Data = segments[i]
	}
	return true
}

// replaceAcross replaces every non-overlapping occurrence of find in the
// concatenation of segments, scanning left to right like strings.ReplaceAll.
// Segment boundaries are kept: an occurrence spanning several segments has
// its replacement written into the segment where it starts and its remaining
// bytes removed from the segments that follow. Joining the result therefore
// equals strings.ReplaceAll(strings.Join(segments, ""), find, replace).
func replaceAcross(segments []string, find, replace string) []string {
	joined := strings.Join(segments, "")
	if find == "" || !strings.Contains(joined, find) {
		return segments
	}

	var starts []int
	for i := 0; i <= len(joined)-len(find); {
		j := strings.Index(joined[i:], find)
		if j < 0 {
			break
		}
		starts = append(starts, i+j)
		i += j + len(find)
	}

	out := make([]string, len(segments))
	offset, m := 0, 0
	for si, seg := range segments {
		segEnd := offset + len(seg)
		var b strings.Builder

		for pos := offset; pos < segEnd; {
			for m < len(starts) && starts[m]+len(find) <= pos {
				m++
			}
			if m < len(starts) && starts[m] <= pos {
				if starts[m] == pos {
					b.WriteString(replace)
				}
				pos = min(starts[m]+len(find), segEnd)
				continue
			}

			next := segEnd
			if m < len(starts) && starts[m] < segEnd {
				next = starts[m]
			}
			b.WriteString(joined[pos:next])
			pos = next
		}

		out[si] = b.String()
		offset = segEnd
	}
	return out
}
