package graph

import (
	"html"
	"strings"
)

// Render substitutes {field} placeholders with session fields. It is
// best-effort: any unknown field or malformed brace returns the template
// unchanged. "{{" and "}}" are literal braces. Values are HTML-escaped since
// screens are sent in HTML parse mode.
func Render(tmpl string, fields map[string]string) string {
	if !strings.ContainsAny(tmpl, "{}") {
		return tmpl
	}
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return tmpl
			}
			key := tmpl[i+1 : i+1+end]
			v, ok := fields[key]
			if !ok || key == "" {
				return tmpl
			}
			b.WriteString(html.EscapeString(v))
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return tmpl
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
