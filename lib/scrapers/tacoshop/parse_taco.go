package tacoshop

import (
	"bytes"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tacorder-backend/lib/htmlutil"
	"tacorder-backend/lib/ids"

	"github.com/PuerkitoBio/goquery"
)

// size keyword patterns in match order. the compound "L Mixte" must
// come before the plain "L" or every mixte taco degrades to an L.
var sizePatterns = []struct {
	re   *regexp.Regexp
	size Size
}{
	{regexp.MustCompile(`(?i)\btacos\s+l\s+mixte\b`), SizeLMixte},
	{regexp.MustCompile(`(?i)\btacos\s+m\b`), SizeM},
	{regexp.MustCompile(`(?i)\btacos\s+l\b`), SizeL},
	{regexp.MustCompile(`(?i)\btacos\s+xl\b`), SizeXL},
	{regexp.MustCompile(`(?i)\btacos\s+xxl\b`), SizeXXL},
	{regexp.MustCompile(`(?i)\btacos\s+g[ée]ant\b`), SizeGeant},
}

var titlePriceRegex = regexp.MustCompile(`-\s*([0-9]+(?:[.,][0-9]+)?)\s*(?:CHF|chf)`)

var meatQuantityRegex = regexp.MustCompile(`^(.*?)\s+x([0-9]+)$`)

func sizeFromTitle(title string) Size {
	for _, p := range sizePatterns {
		if p.re.MatchString(title) {
			return p.size
		}
	}
	return ""
}

func priceFromTitle(title string) float64 {
	groups := titlePriceRegex.FindStringSubmatch(title)
	if len(groups) < 2 {
		return 0
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(groups[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return price
}

// upstream renders explicit "no selection" entries, they are not
// ingredients and never surface in parsed tacos
func isNoneSentinel(name string) bool {
	slug := Slugify(name)
	switch slug {
	case NoMeatSentinel, NoSauceSentinel, NoGarnitureSentinel:
		return true
	}
	return strings.HasPrefix(slug, "sans_") || slug == "aucune" || slug == "aucun"
}

func splitIngredientList(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" || isNoneSentinel(part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseTacoCard converts one taco card block into a Taco. A block
// with neither a recognizable taco title nor any parsed ingredient or
// price data is not a taco card and yields nil, which guards against
// the upstream shuffling unrelated cards into the cart markup. When a
// stock map is given, ingredient names are resolved to canonical
// stock codes.
func ParseTacoCard(card *goquery.Selection, stock Stock) *Taco {
	title := htmlutil.CleanText(htmlutil.SelectionText(card.Find(".card-title, h3, h4").First()))
	size := sizeFromTitle(title)
	price := priceFromTitle(title)

	var meats []Meat
	for _, entry := range splitIngredientList(htmlutil.LabeledText(card, "Viande")) {
		name := entry
		quantity := 1
		if groups := meatQuantityRegex.FindStringSubmatch(entry); len(groups) == 3 {
			name = strings.TrimSpace(groups[1])
			parsed, err := strconv.Atoi(groups[2])
			if err == nil && parsed >= 1 {
				quantity = parsed
			}
		}
		meats = append(meats, Meat{
			Id:       resolveIngredient(name, CategoryMeats, stock),
			Name:     name,
			Quantity: quantity,
		})
	}

	var sauces []Sauce
	for _, name := range splitIngredientList(htmlutil.LabeledText(card, "Sauce")) {
		sauces = append(sauces, Sauce{
			Id:   resolveIngredient(name, CategorySauces, stock),
			Name: name,
		})
	}

	var garnitures []Garniture
	for _, name := range splitIngredientList(htmlutil.LabeledText(card, "Garniture")) {
		garnitures = append(garnitures, Garniture{
			Id:   resolveIngredient(name, CategoryGarnitures, stock),
			Name: name,
		})
	}

	hasData := len(meats) > 0 || len(sauces) > 0 || len(garnitures) > 0 || price > 0
	if size == "" && !hasData {
		slog.Warn("rejecting card without taco title or data", "title", title)
		return nil
	}

	taco := &Taco{
		Size:       size,
		Meats:      meats,
		Sauces:     sauces,
		Garnitures: garnitures,
		Note:       htmlutil.LabeledText(card, "Note"),
		Price:      price,
	}
	taco.Id = standaloneTacoId(taco)
	return taco
}

func resolveIngredient(name, category string, stock Stock) string {
	if stock == nil {
		return Slugify(name)
	}
	return resolveStockCode(name, category, stock)
}

// a content-derived UUID so parsing the same card twice correlates to
// the same local record
func standaloneTacoId(taco *Taco) string {
	meatIds := make([]string, len(taco.Meats))
	for i, m := range taco.Meats {
		meatIds[i] = m.Id
	}
	sauceIds := make([]string, len(taco.Sauces))
	for i, s := range taco.Sauces {
		sauceIds[i] = s.Id
	}
	garnitureIds := make([]string, len(taco.Garnitures))
	for i, g := range taco.Garnitures {
		garnitureIds[i] = g.Id
	}
	hash := ids.TacoContentHash(string(taco.Size), meatIds, sauceIds, garnitureIds)
	return ids.DeterministicUUID(hash, "tacos").String()
}

var cardIdRegex = regexp.MustCompile(`^taco-card-([0-9]+)$`)

// ParseCartTacos enumerates every taco card in the cart HTML by its
// structural id, ordered by the id's numeric suffix so results are
// stable regardless of DOM order. idByIndex optionally remaps each
// parsed taco's id by position, correlating scraped cards back to
// locally tracked cart entries.
func ParseCartTacos(cart []byte, idByIndex map[int]string, stock Stock) []Taco {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(cart))
	if err != nil {
		slog.Warn("failed to parse cart html", "err", err)
		return nil
	}

	type numberedCard struct {
		number int
		sel    *goquery.Selection
	}
	var cards []numberedCard
	doc.Find(`div[id^="taco-card-"]`).Each(func(_ int, sel *goquery.Selection) {
		groups := cardIdRegex.FindStringSubmatch(sel.AttrOr("id", ""))
		if len(groups) < 2 {
			return
		}
		number, err := strconv.Atoi(groups[1])
		if err != nil {
			return
		}
		cards = append(cards, numberedCard{number: number, sel: sel})
	})
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].number < cards[j].number
	})

	var tacos []Taco
	for _, card := range cards {
		taco := ParseTacoCard(card.sel, stock)
		if taco == nil {
			slog.Warn("skipping unparseable taco card", "card", card.number)
			continue
		}
		if id, ok := idByIndex[len(tacos)]; ok {
			taco.Id = id
		}
		tacos = append(tacos, *taco)
	}
	return tacos
}
