package locator

import (
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/hazyhaar/locsynth/resolve"
)

func TestAttributeValue(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no quotes", "plain text", "'plain text'"},
		{"empty", "", "''"},
		{"single only", "it's", `"it's"`},
		{"double only", `say "hi"`, `'say "hi"'`},
		{"both", `it's "x"`, `concat("it's ",'"x"')`},
		{"both leading", `'"`, `concat("'",'"')`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttributeValue(tt.in); got != tt.want {
				t.Errorf("AttributeValue(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestAttributeValue_EvaluatesToInput(t *testing.T) {
	nav := htmlquery.CreateXPathNavigator(parse(t, "<p></p>"))

	for _, in := range []string{
		"",
		"abc",
		"it's",
		`"quoted"`,
		`it's "x"`,
		`'"'"'"`,
		`a'b"c'd"e`,
		`""''`,
	} {
		lit := AttributeValue(in)
		expr, err := xpath.Compile(lit)
		if err != nil {
			t.Fatalf("compile %s: %v", lit, err)
		}
		got, ok := expr.Evaluate(nav).(string)
		if !ok {
			t.Fatalf("%s did not evaluate to a string", lit)
		}
		if got != in {
			t.Errorf("%s evaluated to %q, want %q", lit, got, in)
		}
	}
}

func TestAttributeValue_InPredicate(t *testing.T) {
	doc := parse(t, `<input id="x" value="it's &quot;mixed&quot; 'both'">`)
	want := mustFind(t, doc, "id=x")

	loc := "//input[@value=" + AttributeValue(`it's "mixed" 'both'`) + "]"
	if got := resolve.New(doc).Resolve(loc); got != want {
		t.Errorf("%s did not resolve to the input", loc)
	}
}
