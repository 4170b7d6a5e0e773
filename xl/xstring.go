package xl

import (
	"strings"
	"unicode/utf8"
)

// escapeXstring prepares text for a spreadsheetml string element. Characters
// that XML 1.0 cannot carry are written as _xHHHH_, and an underscore that
// would otherwise start such a sequence is itself escaped as _x005F_, so that
// readers decode the original text. Markup escaping is left to the XML
// writer.
func escapeXstring(s string) string {
	if !needsXstringEscape(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteRune(utf8.RuneError)
		case !xmlChar(r):
			writeXescape(&b, r)
		case r == '_' && isXescape(s[i:]):
			writeXescape(&b, '_')
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func needsXstringEscape(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !xmlChar(r) || r == '_' && isXescape(s[i:]) {
			return true
		}
		i += size
	}
	return false
}

// xmlChar reports whether r survives an XML round trip as literal text.
// A carriage return does not: parsers fold it into line feeds.
func xmlChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n':
		return true
	case r < 0x20:
		return false
	case r >= 0xD800 && r <= 0xDFFF:
		return false
	case r == 0xFFFE || r == 0xFFFF:
		return false
	}
	return r <= utf8.MaxRune
}

// isXescape reports whether s starts with _xHHHH_.
func isXescape(s string) bool {
	if len(s) < 7 || s[0] != '_' || s[1] != 'x' || s[6] != '_' {
		return false
	}
	for _, c := range []byte(s[2:6]) {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func writeXescape(b *strings.Builder, r rune) {
	const hex = "0123456789ABCDEF"
	b.WriteString("_x")
	b.WriteByte(hex[r>>12&0xF])
	b.WriteByte(hex[r>>8&0xF])
	b.WriteByte(hex[r>>4&0xF])
	b.WriteByte(hex[r&0xF])
	b.WriteByte('_')
}

// preserveSpace reports whether xml:space="preserve" is needed to keep
// leading or trailing whitespace.
func preserveSpace(s string) bool {
	return s != "" && (isSpace(s[0]) || isSpace(s[len(s)-1]))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
