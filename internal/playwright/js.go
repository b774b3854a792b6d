package playwright

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Quote renders s as a single-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// envName derives an environment variable for a masked input, e.g.
// "password" -> "GREMLIN_PASSWORD".
func envName(key string) string {
	var b strings.Builder
	b.WriteString("GREMLIN")
	under := false
	for _, r := range key {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if !under {
				b.WriteByte('_')
				under = true
			}
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		under = false
	}
	if b.Len() == len("GREMLIN") {
		b.WriteString("_INPUT")
	}
	return b.String()
}

// Slug lowercases s and joins its alphanumeric runs with dashes.
func Slug(s string) string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	if len(parts) == 0 {
		return "spec"
	}
	return strings.Join(parts, "-")
}
