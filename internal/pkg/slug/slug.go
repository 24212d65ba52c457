package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make converte um texto livre em um segmento de URL: minúsculas, sem acentos,
// com qualquer sequência de caracteres não alfanuméricos reduzida a um único hífen.
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(plain) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// ForMovie deriva o slug de um filme a partir de título e ano, e.g. "Dune", 2021 -> "dune-2021".
func ForMovie(title string, year int) string {
	base := Make(title)
	if base == "" {
		// Nunca puramente numérico: slugs e IDs compartilham a mesma rota.
		base = "movie"
	}
	return base + "-" + strconv.Itoa(year)
}
