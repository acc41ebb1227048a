// Package textfmt provides the pure text helpers shared by the forms,
// listings and filters: normalization, escaping, schedule ranges, date
// formats and folder path conversion.
package textfmt

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder is shown for empty values in read-only views.
const Placeholder = "—"

// Normalize strips diacritics and upper-cases s, so "Función" and
// "FUNCION" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// Contains reports whether the normalized form of s contains the
// normalized form of sub.
func Contains(s, sub string) bool {
	return strings.Contains(Normalize(s), Normalize(sub))
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// Terminal makes an untrusted value safe to print: escape sequences are
// stripped and remaining control characters other than newline and tab
// are dropped.
func Terminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Dash returns the trimmed value, or the placeholder when it is empty.
func Dash(s string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return Placeholder
}

var truthy = map[string]bool{"si": true, "sí": true, "true": true, "1": true, "x": true}

// IsTruthy reports whether s is one of si, sí, true, 1 or x, ignoring
// case and surrounding space.
func IsTruthy(s string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}

// YesNo renders a flag as Sí or No.
func YesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

// ISOToDMY converts YYYY-MM-DD into DD/MM/YYYY. Values that are not an
// ISO date are returned unchanged.
func ISOToDMY(iso string) string {
	return reorderISO(iso, "/")
}

// ISOToDotted converts YYYY-MM-DD into DD.MM.YYYY.
func ISOToDotted(iso string) string {
	return reorderISO(iso, ".")
}

func reorderISO(iso, sep string) string {
	if iso == "" {
		return ""
	}
	if len(iso) > len("2006-01-02") {
		iso = iso[:len("2006-01-02")]
	}
	parts := strings.Split(iso, "-")
	if len(parts) != 3 { //nolint:mnd // year, month, day
		return iso
	}
	return parts[2] + sep + parts[1] + sep + parts[0]
}

// UNCToFileURL converts a Windows drive or UNC folder path into a file URL.
//
//	C:\carpeta        -> file:///C:/carpeta
//	\\server\share\x  -> file://server/share/x
func UNCToFileURL(p string) string {
	s := strings.TrimSpace(p)
	if isDrivePath(s) {
		return "file:///" + strings.ReplaceAll(s, `\`, "/")
	}
	s = strings.TrimLeft(s, `\`)
	return "file://" + strings.ReplaceAll(s, `\`, "/")
}

func isDrivePath(s string) bool {
	if len(s) < 3 { //nolint:mnd // drive letter, colon, separator
		return false
	}
	c := s[0]
	letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	return letter && s[1] == ':' && (s[2] == '\\' || s[2] == '/')
}
