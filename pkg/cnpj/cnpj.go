// Package cnpj normalizes and formats Brazilian company tax identifiers.
//
// Normalize keeps only ASCII digits. Format applies the display mask
// XX.XXX.XXX/XXXX-XX incrementally, so it can be called on every keystroke
// of a partially typed value:
//
//	"12"             → "12"
//	"12345"          → "12.345"
//	"12345678"       → "12.345.678"
//	"123456780001"   → "12.345.678/0001"
//	"12345678000195" → "12.345.678/0001-95"
//
// Neither function validates length or check digits.
package cnpj

import "strings"

// Length is the digit count of a complete identifier.
const Length = 14

// Normalize strips every character that is not 0-9.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Format renders the display mask for as many digits as are present.
// Input is normalized first; digits beyond Length stay after the dash.
func Format(value string) string {
	d := Normalize(value)
	n := len(d)

	var b strings.Builder
	b.Grow(n + 4)
	switch {
	case n <= 2:
		return d
	case n <= 5:
		b.WriteString(d[:2])
		b.WriteByte('.')
		b.WriteString(d[2:])
	case n <= 8:
		b.WriteString(d[:2])
		b.WriteByte('.')
		b.WriteString(d[2:5])
		b.WriteByte('.')
		b.WriteString(d[5:])
	case n <= 12:
		b.WriteString(d[:2])
		b.WriteByte('.')
		b.WriteString(d[2:5])
		b.WriteByte('.')
		b.WriteString(d[5:8])
		b.WriteByte('/')
		b.WriteString(d[8:])
	default:
		b.WriteString(d[:2])
		b.WriteByte('.')
		b.WriteString(d[2:5])
		b.WriteByte('.')
		b.WriteString(d[5:8])
		b.WriteByte('/')
		b.WriteString(d[8:12])
		b.WriteByte('-')
		b.WriteString(d[12:])
	}
	return b.String()
}

// IsComplete reports whether digits has exactly Length digits and nothing else.
func IsComplete(digits string) bool {
	return len(digits) == Length && Normalize(digits) == digits
}
