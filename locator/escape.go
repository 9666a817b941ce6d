package locator

import "strings"

// AttributeValue renders value as an XPath string literal. Values holding
// both quote characters are split into runs and joined with concat().
func AttributeValue(value string) string {
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	if !strings.Contains(value, `"`) {
		return `"` + value + `"`
	}

	var parts []string
	for {
		apos := strings.IndexByte(value, '\'')
		quot := strings.IndexByte(value, '"')
		switch {
		case apos < 0:
			parts = append(parts, "'"+value+"'")
		case quot < 0:
			parts = append(parts, `"`+value+`"`)
		case quot < apos:
			parts = append(parts, "'"+value[:apos]+"'")
			value = value[apos:]
			continue
		default:
			parts = append(parts, `"`+value[:quot]+`"`)
			value = value[quot:]
			continue
		}
		return "concat(" + strings.Join(parts, ",") + ")"
	}
}
