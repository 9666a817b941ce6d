package fetcher

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// spaRoots are mount points left empty by client-rendered apps.
var spaRoots = map[string]bool{"root": true, "app": true, "__next": true}

// IsSufficient returns true if the HTML body has enough visible text relative
// to markup that a browser is not needed: at least 256 bytes, at least 200
// non-blank text characters making up 10% of the page, and no empty SPA
// mount point or "enable JavaScript" notice.
func IsSufficient(body []byte) bool {
	if len(body) < 256 {
		return false
	}

	s := scan(body)
	if s.spaShell {
		return false
	}
	total := s.text + s.markup
	if total == 0 || s.text < 200 {
		return false
	}
	return float64(s.text)/float64(total) >= 0.10
}

type scanStats struct {
	text, markup int
	spaShell     bool
}

// scan counts visible non-blank text bytes against markup bytes. Script,
// style and noscript bodies count as markup.
func scan(body []byte) scanStats {
	var st scanStats
	z := html.NewTokenizer(bytes.NewReader(body))

	var raw atom.Atom // inside <script>, <style> or <noscript>
	mountOpen := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return st
		}
		switch tt {
		case html.TextToken:
			if raw != 0 {
				st.markup += len(z.Raw())
				if raw == atom.Noscript && bytes.Contains(bytes.ToLower(z.Raw()), []byte("enable javascript")) {
					st.spaShell = true
				}
				continue
			}
			text := z.Text()
			st.text += visible(text)
			if visible(text) > 0 {
				mountOpen = false
			}
		case html.StartTagToken:
			st.markup += len(z.Raw())
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			mountOpen = false
			switch a {
			case atom.Script, atom.Style, atom.Noscript:
				raw = a
			case atom.Div:
				for hasAttr {
					var k, v []byte
					k, v, hasAttr = z.TagAttr()
					if string(k) == "id" && spaRoots[string(v)] {
						mountOpen = true
					}
				}
			}
		case html.EndTagToken:
			st.markup += len(z.Raw())
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == raw {
				raw = 0
			}
			if a == atom.Div && mountOpen {
				st.spaShell = true
			}
			mountOpen = false
		default:
			st.markup += len(z.Raw())
			mountOpen = false
		}
	}
}

func visible(b []byte) int {
	n := 0
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			n++
		}
	}
	return n
}
