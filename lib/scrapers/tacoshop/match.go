package tacoshop

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var accentFolder = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
	"œ", "oe",
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into the local id form: lowercase,
// accents folded, everything else collapsed into underscores.
// "Cordon Bleu" -> "cordon_bleu".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = accentFolder.Replace(s)
	s = nonSlugChars.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// resolveStockCode maps a display name scraped out of cart HTML to
// the canonical code the office page lists for that category. the
// lookup order is: exact slug match, case-insensitive match, then a
// substring scan over slug fragments longer than 3 characters with
// JaroWinkler similarity breaking ties between candidates. an
// unresolved name keeps its local slug.
func resolveStockCode(name, category string, stock Stock) string {
	slug := Slugify(name)
	codes, ok := stock[category]
	if !ok {
		return slug
	}

	if _, ok := codes[slug]; ok {
		return slug
	}

	for code := range codes {
		if strings.EqualFold(code, slug) {
			return code
		}
	}

	var candidates []string
	for code := range codes {
		if fragmentsOverlap(slug, code) {
			candidates = append(candidates, code)
		}
	}
	switch len(candidates) {
	case 0:
		return slug
	case 1:
		return candidates[0]
	}

	best := candidates[0]
	bestScore := matchr.JaroWinkler(slug, best, false)
	for _, code := range candidates[1:] {
		score := matchr.JaroWinkler(slug, code, false)
		if score > bestScore {
			best = code
			bestScore = score
		}
	}
	return best
}

// fragments shorter than 4 characters ("de", "la", "au") match half
// the menu and are ignored
func fragmentsOverlap(slug, code string) bool {
	for _, fragment := range strings.Split(slug, "_") {
		if len(fragment) > 3 && strings.Contains(code, fragment) {
			return true
		}
	}
	for _, fragment := range strings.Split(code, "_") {
		if len(fragment) > 3 && strings.Contains(slug, fragment) {
			return true
		}
	}
	return false
}
