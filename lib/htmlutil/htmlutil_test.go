package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, fragment string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestSelectionText(t *testing.T) {
	doc := docFrom(t, `<div><p>un <b>deux</b></p><p>trois</p></div>`)
	require.Equal(t, "un deuxtrois", SelectionText(doc.Find("p")))
	require.Equal(t, "", SelectionText(doc.Find("span")))
}

func TestLabeledText(t *testing.T) {
	doc := docFrom(t, `
		<div>
			<p>unrelated</p>
			<p><strong>Viande:</strong> Poulet, Boeuf</p>
			<p>Sauce: Harissa</p>
		</div>
	`)

	require.Equal(t, "Poulet, Boeuf", LabeledText(doc.Selection, "Viande"))
	// no <strong> label, found by the substring fallback
	require.Equal(t, "Harissa", LabeledText(doc.Selection, "Sauce"))
	require.Equal(t, "", LabeledText(doc.Selection, "Garniture"))
}

func TestTextAfterColon(t *testing.T) {
	doc := docFrom(t, `<p><strong>Total:</strong>   42.50   CHF</p>`)
	require.Equal(t, "42.50 CHF", TextAfterColon(doc.Find("p")))

	noColon := docFrom(t, `<p>just text</p>`)
	require.Equal(t, "", TextAfterColon(noColon.Find("p")))
	require.Equal(t, "", TextAfterColon(nil))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText("  a \n\t b    c  "))
}
