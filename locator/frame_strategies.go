package locator

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
)

var frameAttributeNames = []string{"name", "src"}

// frameAttributes uses the first of name/src the frame carries.
func frameAttributes(tk *Toolkit, e, _ *html.Node) (string, bool, error) {
	for _, name := range frameAttributeNames {
		v, ok := dom.Attr(e, name)
		if !ok {
			continue
		}
		expr := "//" + dom.Tag(e) + "[contains(@" + name + "," + AttributeValue(v) + ")]"
		return tk.PreciseXPath(expr, e), true, nil
	}
	return none()
}

// framePosition builds the path below <html> without intermediate checks.
func framePosition(_ *Toolkit, e, boundary *html.Node) (string, bool, error) {
	path := ""
	for current := e; dom.IsElement(current) && current != boundary; current = current.Parent {
		step := "/" + dom.Tag(current)
		if current.Parent != nil {
			step = relativeXPathFromParent(current)
		}
		if step == "/html" {
			if path == "" {
				return none()
			}
			return "/" + path, true, nil
		}
		path = step + path
	}
	return none()
}
