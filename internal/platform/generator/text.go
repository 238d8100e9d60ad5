package generator

import (
	"strings"
	"unicode"
)

var asciiReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"–", "-", "—", "-", "‑", "-",
	"•", "-",
	"…", "...",
)

// CleanText maps typographic punctuation to ASCII and drops whatever non-ASCII is left,
// since the renderer only embeds latin fonts.
func CleanText(s string) string {
	s = asciiReplacer.Replace(s)
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}
