package ordering

import (
	"context"
	"log/slog"

	"tacorder-backend/lib/scrapers/tacoshop"

	"github.com/antzucaro/matchr"
)

// names below this similarity are left unresolved rather than mapped
// to the wrong item
const minNameSimilarity = 0.85

// ResolveSummaryCodes maps the display names of an order summary's
// extra/drink/dessert lines to canonical stock codes: exact slug
// match first, then the closest JaroWinkler candidate above the
// similarity floor. unresolved names map to their local slug.
func ResolveSummaryCodes(ctx context.Context, summary *tacoshop.OrderSummary, stock tacoshop.Stock) map[string]string {
	resolved := map[string]string{}
	if summary == nil {
		return resolved
	}

	resolveSection(ctx, resolved, summary.Extras, tacoshop.CategoryExtras, stock)
	resolveSection(ctx, resolved, summary.Drinks, tacoshop.CategoryDrinks, stock)
	resolveSection(ctx, resolved, summary.Desserts, tacoshop.CategoryDesserts, stock)
	return resolved
}

func resolveSection(
	ctx context.Context,
	out map[string]string,
	items []tacoshop.SummaryItem,
	category string,
	stock tacoshop.Stock,
) {
	codes := stock[category]
	for _, item := range items {
		slug := tacoshop.Slugify(item.Name)
		if _, ok := codes[slug]; ok {
			out[item.Name] = slug
			continue
		}

		best := ""
		var bestScore float64
		for code := range codes {
			score := matchr.JaroWinkler(slug, code, false)
			if score > bestScore {
				best = code
				bestScore = score
			}
		}
		if best == "" || bestScore < minNameSimilarity {
			slog.WarnContext(
				ctx,
				"could not resolve summary item to a stock code",
				"name", item.Name,
				"category", category,
			)
			out[item.Name] = slug
			continue
		}
		out[item.Name] = best
	}
}
