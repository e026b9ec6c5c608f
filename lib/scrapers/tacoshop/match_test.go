package tacoshop

import (
	"testing"

	_ "embed"

	"github.com/stretchr/testify/require"
)

//go:embed testdata/stock.html
var stockFixture []byte

func TestSlugify(t *testing.T) {
	require.Equal(t, "cordon_bleu", Slugify("Cordon Bleu"))
	require.Equal(t, "algerienne", Slugify("Algérienne"))
	require.Equal(t, "coca_cola_33cl", Slugify(" Coca-Cola  33cl "))
	require.Equal(t, "", Slugify("  -  "))
}

func TestResolveStockCode(t *testing.T) {
	stock := ParseStock(stockFixture)
	require.NotEmpty(t, stock)

	// exact slug match
	require.Equal(t, "poulet", resolveStockCode("Poulet", CategoryMeats, stock))
	// substring match on a fragment longer than 3 characters
	require.Equal(t, "cordon_bleu", resolveStockCode("Cordon", CategoryMeats, stock))
	require.Equal(t, "coca_cola_33", resolveStockCode("Coca-Cola 33cl", CategoryDrinks, stock))
	// unresolved names keep their local slug
	require.Equal(t, "merguez", resolveStockCode("Merguez", CategoryMeats, stock))
	// unknown category behaves the same
	require.Equal(t, "poulet", resolveStockCode("Poulet", "inconnu", stock))
}

func TestParseStock(t *testing.T) {
	stock := ParseStock(stockFixture)

	availability, ok := stock.Lookup(CategoryMeats, "cordon_bleu")
	require.True(t, ok)
	require.Equal(t, LowStock, availability)

	availability, ok = stock.Lookup(CategoryMeats, "boeuf")
	require.True(t, ok)
	require.Equal(t, OutOfStock, availability)

	availability, ok = stock.Lookup(CategorySauces, "harissa")
	require.True(t, ok)
	require.Equal(t, InStock, availability)

	_, ok = stock.Lookup(CategoryMeats, "inexistant")
	require.False(t, ok)
	_, ok = stock.Lookup("inconnu", "poulet")
	require.False(t, ok)
}
