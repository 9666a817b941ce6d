// Package dom holds read-only helpers over x/net/html element trees.
// Nothing in here mutates a node.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the tag name of an element, or "" for other nodes. HTML names
// come lower-cased from the parser; SVG and MathML names keep their case
// (linearGradient, foreignObject), which XPath and CSS matching rely on.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return n.Data
}

// Attr returns the value of an attribute and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrValue returns the value of an attribute, "" when absent.
func AttrValue(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// TextContent concatenates every descendant text node, like the DOM property.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			return
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	if n != nil {
		walk(n)
	}
	return sb.String()
}

// LinkText normalises anchor text the way link locators compare it:
// non-breaking spaces become plain spaces and surrounding whitespace is trimmed.
func LinkText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}

// SameTagIndex returns the 0-based position of n among its parent's element
// children sharing its tag, or -1 when n has no parent.
func SameTagIndex(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return -1
	}
	idx := 0
	for s := n.Parent.FirstChild; s != nil; s = s.NextSibling {
		if s == n {
			return idx
		}
		if s.Type == n.Type && s.Data == n.Data {
			idx++
		}
	}
	return -1
}

// Root walks up to the top of the tree n belongs to (the document node for
// parsed pages).
func Root(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// DocumentElement returns the <html> element under a document node.
func DocumentElement(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	if doc.Type == html.ElementNode {
		return doc
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants in document order until fn returns false.
func Walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Find returns the first element in document order matching pred.
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if IsElement(n) && pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
