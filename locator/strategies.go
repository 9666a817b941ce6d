package locator

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
)

func none() (string, bool, error) { return "", false, nil }

func byID(_ *Toolkit, e, _ *html.Node) (string, bool, error) {
	if id := dom.AttrValue(e, "id"); id != "" {
		return "id=" + id, true, nil
	}
	return none()
}

func byLink(_ *Toolkit, e, _ *html.Node) (string, bool, error) {
	if dom.Tag(e) != "a" {
		return none()
	}
	text := dom.TextContent(e)
	if strings.TrimSpace(text) == "" {
		return none()
	}
	return "link=" + dom.LinkText(text), true, nil
}

func byName(_ *Toolkit, e, _ *html.Node) (string, bool, error) {
	if name := dom.AttrValue(e, "name"); name != "" {
		return "name=" + name, true, nil
	}
	return none()
}

// byCSS prepends ancestor sub-paths with a child combinator until the
// selector finds e or the <html> element is reached.
func byCSS(tk *Toolkit, e, _ *html.Node) (string, bool, error) {
	current := e
	sub := CSSSubPath(e)
	for !tk.Finds("css="+sub, e) && dom.Tag(current) != "html" && dom.IsElement(current.Parent) {
		current = current.Parent
		sub = CSSSubPath(current) + " > " + sub
	}
	return "css=" + sub, true, nil
}

func xpathLink(tk *Toolkit, e, _ *html.Node) (string, bool, error) {
	if dom.Tag(e) != "a" {
		return none()
	}
	text := strings.TrimSpace(dom.TextContent(e))
	if text == "" {
		return none()
	}
	return tk.PreciseXPath("//a[contains(text(),"+AttributeValue(text)+")]", e), true, nil
}

func xpathImg(tk *Toolkit, e, _ *html.Node) (string, bool, error) {
	if dom.Tag(e) != "img" {
		return none()
	}
	if alt := dom.AttrValue(e, "alt"); alt != "" {
		return tk.PreciseXPath("//img[@alt="+AttributeValue(alt)+"]", e), true, nil
	}
	if title := dom.AttrValue(e, "title"); title != "" {
		return tk.PreciseXPath("//img[@title="+AttributeValue(title)+"]", e), true, nil
	}
	if src := dom.AttrValue(e, "src"); src != "" {
		return tk.PreciseXPath("//img[contains(@src,"+AttributeValue(src)+")]", e), true, nil
	}
	return none()
}

// preferredAttributes feed xpath:attributes, one more per attempt.
var preferredAttributes = []string{"id", "name", "value", "type", "action", "onclick"}

func xpathAttributes(tk *Toolkit, e, _ *html.Node) (string, bool, error) {
	tag := dom.Tag(e)
	var preds []string
	for _, name := range preferredAttributes {
		v, ok := dom.Attr(e, name)
		if !ok {
			continue
		}
		preds = append(preds, "@"+name+"="+AttributeValue(v))
		loc := tk.PreciseXPath("//"+tag+"["+strings.Join(preds, " and ")+"]", e)
		if tk.Finds(loc, e) {
			return loc, true, nil
		}
	}
	return none()
}

// xpathIDRelative anchors a positional path on the nearest ancestor with an id.
func xpathIDRelative(tk *Toolkit, e, _ *html.Node) (string, bool, error) {
	path := ""
	for current := e; dom.IsElement(current) && current.Parent != nil; current = current.Parent {
		path = relativeXPathFromParent(current) + path
		parent := current.Parent
		if !dom.IsElement(parent) {
			break
		}
		if id := dom.AttrValue(parent, "id"); id != "" {
			return tk.PreciseXPath("//"+dom.Tag(parent)+"[@id="+AttributeValue(id)+"]"+path, e), true, nil
		}
	}
	return none()
}

// xpathHref matches absolute URLs exactly. Relative hrefs use contains()
// because some engines hand back the resolved absolute URL.
func xpathHref(tk *Toolkit, e, _ *html.Node) (string, bool, error) {
	if dom.Tag(e) != "a" {
		return none()
	}
	href, ok := dom.Attr(e, "href")
	if !ok {
		return none()
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return tk.PreciseXPath("//a[@href="+AttributeValue(href)+"]", e), true, nil
	}
	return tk.PreciseXPath("//a[contains(@href, "+AttributeValue(href)+")]", e), true, nil
}

// xpathPosition grows a tag/index path upwards and stops at the first one
// resolving to e.
func xpathPosition(tk *Toolkit, e, boundary *html.Node) (string, bool, error) {
	path := ""
	for current := e; dom.IsElement(current) && current != boundary; current = current.Parent {
		if current.Parent != nil {
			path = relativeXPathFromParent(current) + path
		} else {
			path = "/" + dom.Tag(current) + path
		}
		if loc := "/" + path; tk.Finds(loc, e) {
			return loc, true, nil
		}
	}
	return none()
}
