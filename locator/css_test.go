package locator

import (
	"testing"

	"github.com/hazyhaar/locsynth/resolve"
)

func TestCSSSubPath(t *testing.T) {
	doc := parse(t, `<html><body>
<div id="foo"></div>
<span class="a b"></span>
<span class="  a   b "></span>
<div id="1abc"></div>
<form id="f">
  <input name="q" title="t">
  <input type="text" title='say "hi"'>
  <img alt='a "b"'>
  <div class="a:b" title="t"></div>
</form>
<ul><li>1</li><li>2</li></ul>
</body></html>`)

	tests := []struct {
		name    string
		locator string
		want    string
	}{
		{"id", "id=foo", "#foo"},
		{"classes", "//span[1]", "span.a.b"},
		{"messy classes", "//span[2]", "span.a.b"},
		{"id not an identifier", "id=1abc", `div[id="1abc"]`},
		{"name", "name=q", `input[name="q"]`},
		{"type before title", "//form/input[2]", `input[type="text"]`},
		{"escaped alt", "//img", `img[alt="a \"b\""]`},
		{"class not an identifier", "//form/div", `div[title="t"]`},
		{"first of type", "//li[1]", "li"},
		{"second of type", "//li[2]", "li:nth-of-type(2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CSSSubPath(mustFind(t, doc, tt.locator)); got != tt.want {
				t.Errorf("CSSSubPath = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCSSSubPath_Resolves(t *testing.T) {
	doc := parse(t, `<p><img alt='a "b"'><b class="k">x</b><b>y</b></p>`)
	r := resolve.New(doc)

	for _, loc := range []string{"//img", "//b[2]", "//b[@class='k']"} {
		e := mustFind(t, doc, loc)
		sub := CSSSubPath(e)
		if got := r.Resolve("css=" + sub); got != e {
			t.Errorf("css=%s does not resolve back to %s", sub, loc)
		}
	}
}
