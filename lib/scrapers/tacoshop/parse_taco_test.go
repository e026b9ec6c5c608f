package tacoshop

import (
	"strings"
	"testing"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/cart.html
var cartFixture []byte

func cardFrom(t *testing.T, fragment string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatal(err)
	}
	return doc.Find("div.card")
}

func TestParseTacoCard(t *testing.T) {
	card := cardFrom(t, `<div class="card">
		<div class="card-title">Tacos XL - 15.50CHF</div>
		<p><strong>Viande:</strong> Cordon Bleu, Poulet x2</p>
		<p><strong>Sauce:</strong> Harissa</p>
		<p><strong>Garniture:</strong> Salade, Sans garniture</p>
		<p><strong>Note:</strong> bien cuit</p>
	</div>`)

	taco := ParseTacoCard(card, nil)
	require.NotNil(t, taco)
	require.Equal(t, SizeXL, taco.Size)
	require.Equal(t, 15.5, taco.Price)
	require.Equal(t, "bien cuit", taco.Note)

	require.Equal(t, []Meat{
		{Id: "cordon_bleu", Name: "Cordon Bleu", Quantity: 1},
		{Id: "poulet", Name: "Poulet", Quantity: 2},
	}, taco.Meats)
	require.Equal(t, []Sauce{{Id: "harissa", Name: "Harissa"}}, taco.Sauces)
	// the "none" sentinel entry is filtered, the real one kept
	require.Equal(t, []Garniture{{Id: "salade", Name: "Salade"}}, taco.Garnitures)
}

func TestParseTacoCardSizePrecedence(t *testing.T) {
	card := cardFrom(t, `<div class="card">
		<div class="card-title">Tacos L Mixte - 12CHF</div>
		<p><strong>Viande:</strong> Poulet</p>
	</div>`)

	taco := ParseTacoCard(card, nil)
	require.NotNil(t, taco)
	// must resolve the compound size, not the plain L
	require.Equal(t, SizeLMixte, taco.Size)
}

func TestParseTacoCardRejectsNonTaco(t *testing.T) {
	card := cardFrom(t, `<div class="card">
		<div class="card-title">Carte cadeau</div>
		<p>valable 6 mois</p>
	</div>`)
	require.Nil(t, ParseTacoCard(card, nil))
}

func TestParseTacoCardDeterministicId(t *testing.T) {
	fragment := `<div class="card">
		<div class="card-title">Tacos M - 9CHF</div>
		<p><strong>Viande:</strong> Poulet</p>
		<p><strong>Sauce:</strong> Blanche</p>
	</div>`

	a := ParseTacoCard(cardFrom(t, fragment), nil)
	b := ParseTacoCard(cardFrom(t, fragment), nil)
	require.NotNil(t, a)
	require.Equal(t, a.Id, b.Id)
}

func TestParseCartTacos(t *testing.T) {
	tacos := ParseCartTacos(cartFixture, nil, nil)

	// card 7 has no size and no data so it is rejected, the rest are
	// ordered by the numeric suffix of their structural id, not by
	// DOM order
	require.Len(t, tacos, 2)
	require.Equal(t, SizeLMixte, tacos[0].Size)
	require.Equal(t, SizeXL, tacos[1].Size)

	require.Equal(t, []Sauce{
		{Id: "harissa", Name: "Harissa"},
		{Id: "algerienne", Name: "Algérienne"},
	}, tacos[0].Sauces)
	require.Empty(t, tacos[0].Garnitures)
	require.Empty(t, tacos[1].Sauces)
}

func TestParseCartTacosRemapsIds(t *testing.T) {
	tacos := ParseCartTacos(cartFixture, map[int]string{
		0: "local-a",
		1: "local-b",
	}, nil)

	require.Len(t, tacos, 2)
	require.Equal(t, "local-a", tacos[0].Id)
	require.Equal(t, "local-b", tacos[1].Id)
}

func TestParseCartTacosResolvesStockCodes(t *testing.T) {
	stock := ParseStock(stockFixture)
	tacos := ParseCartTacos(cartFixture, nil, stock)

	require.Len(t, tacos, 2)
	// "Algérienne" slugifies to the canonical code directly
	require.Equal(t, "algerienne", tacos[0].Sauces[1].Id)
	require.Equal(t, "cordon_bleu", tacos[1].Meats[0].Id)
}
