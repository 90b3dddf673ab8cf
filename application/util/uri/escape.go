package uri

import "strings"

type encodeMode uint

const (
	encodePath encodeMode = 1 + iota
	encodeHost
	encodeQuery
)

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.2
func isSubDelim(c byte) bool {
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.3
func isUnreserved(c byte) bool {
	if isAlpha(c) || isDigit(c) {
		return true
	}
	switch c {
	case '-', '.', '_', '~':
		return true
	}
	return false
}

func isReserved(c byte) bool {
	switch c {
	case ':', '/', '?', '#', '[', ']', '@':
		// gen-delims
		return true
	}
	return isSubDelim(c)
}

func hex(c byte) (h [2]byte) {
	const hexSet = "0123456789ABCDEF"
	h[0] = hexSet[c>>4]
	h[1] = hexSet[c&0xF]
	return
}

func escape(s string, mode encodeMode) string {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if shouldEscape(c, mode) {
			hex := hex(c)
			b.Write([]byte{'%', hex[0], hex[1]})
		} else {
			b.WriteByte(c)
		}
	}

	return b.String()
}

func shouldEscape(c byte, mode encodeMode) bool {
	if isUnreserved(c) {
		return false
	}

	if isReserved(c) {
		switch mode {
		case encodeHost:
			// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.2
			return !(isSubDelim(c) || c == '[' || c == ']' || c == ':') // For IP Literal and reg-name.
		case encodePath:
			// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.3
			return !(isSubDelim(c) || c == ':' || c == '@' || c == '/')
		case encodeQuery:
			// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.4
			return !(isSubDelim(c) || c == ':' || c == '@' || c == '/' || c == '?')
		}
	}

	return true
}
