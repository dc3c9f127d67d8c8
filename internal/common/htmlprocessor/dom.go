package htmlprocessor

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// domDocument implements Document using golang.org/x/net/html DOM parsing.
type domDocument struct {
	root *html.Node
}

// ParseWithDOM parses HTML bytes into a Document using DOM parsing.
func ParseWithDOM(htmlBytes []byte) (Document, error) {
	return Parse(bytes.NewReader(htmlBytes))
}

// Parse reads an HTML document from r. Input must be UTF-8.
func Parse(r io.Reader) (Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &domDocument{root: root}, nil
}

// findHTMLElement returns the first HTML-namespace element named tag
// (case-insensitive) in document order, so an <svg><title> is not mistaken
// for the page title. Returns nil if not found.
func findHTMLElement(node *html.Node, tag string) *html.Node {
	if node == nil {
		return nil
	}
	if node.Type == html.ElementNode && node.Namespace == "" && strings.EqualFold(node.Data, tag) {
		return node
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if found := findHTMLElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// getAttr returns attribute value for given name (case-insensitive comparison).
// Returns empty string if not found.
func getAttr(node *html.Node, name string) string {
	if node == nil {
		return ""
	}
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val
		}
	}
	return ""
}

// getTextContent recursively extracts all text content from node and descendants.
func getTextContent(node *html.Node) string {
	if node == nil {
		return ""
	}

	var sb strings.Builder
	for _, n := range collectTextNodes(node, nil) {
		sb.WriteString(n.Data)
	}
	return sb.String()
}

// collectTextNodes returns the text nodes under node in document order,
// leaving out any inside an element whose lowercased tag is in skip.
func collectTextNodes(node *html.Node, skip map[string]bool) []*html.Node {
	var nodes []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			nodes = append(nodes, n)
			return
		case html.ElementNode:
			if skip[strings.ToLower(n.Data)] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(node)
	return nodes
}

func (d *domDocument) Title() string {
	return getTextContent(findHTMLElement(d.root, "title"))
}

func (d *domDocument) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
