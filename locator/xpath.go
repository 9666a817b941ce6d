package locator

import (
	"strconv"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
)

// PreciseXPath rewrites expr so that it resolves to e through r.
//
// An expr already resolving to e is returned unchanged. Otherwise expr is
// evaluated against e's document and, if e is the i-th match, "(expr)[i]" is
// returned once it is confirmed to resolve to e. When e is not among the
// matches the original expr comes back and final verification drops it.
func PreciseXPath(r Resolver, expr string, e *html.Node) string {
	return preciseXPath(newToolkit(r, newOptions(nil).logger), expr, e)
}

func preciseXPath(tk *Toolkit, expr string, e *html.Node) string {
	if tk.Finds(expr, e) {
		return expr
	}

	nodes, err := htmlquery.QueryAll(dom.Root(e), expr)
	if err != nil {
		tk.logger.Debug("locator: xpath snapshot failed", "expr", expr, "error", err)
		return expr
	}
	for i, n := range nodes {
		if n != e {
			continue
		}
		precise := "(" + expr + ")[" + strconv.Itoa(i+1) + "]"
		if tk.Finds(precise, e) {
			return precise
		}
		break
	}
	return expr
}

// relativeXPathFromParent is the step selecting n from its parent: the tag
// name plus a 1-based position when same-tag siblings precede it.
func relativeXPathFromParent(n *html.Node) string {
	p := "/" + dom.Tag(n)
	if idx := dom.SameTagIndex(n); idx > 0 {
		p += "[" + strconv.Itoa(idx+1) + "]"
	}
	return p
}
