package tacoshop

import (
	"bytes"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"tacorder-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// section headers exactly as the upstream renders them
const (
	sectionTacos    = "Tacos"
	sectionExtras   = "Extras"
	sectionDrinks   = "Boissons"
	sectionDesserts = "Desserts"
)

// totals labels of the payment info block
const (
	labelCartTotal   = "Total du panier"
	labelDeliveryFee = "Frais de livraison"
	labelTotalAmount = "Montant à payer"
)

var summaryLineRegex = regexp.MustCompile(`(?i)^([0-9]+)\s*x\s*(.+?)\s*-\s*([0-9]+(?:[.,][0-9]+)?)\s*CHF$`)

var amountRegex = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)?)`)

func parseAmount(text string) float64 {
	groups := amountRegex.FindStringSubmatch(text)
	if len(groups) < 2 {
		return 0
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(groups[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return amount
}

// ParseOrderSummary reads the cart summary fragment the upstream
// returns. category sections are located by header text, line items
// by the "<qty> x <name> - <price>CHF" shape. anything that does not
// match is skipped, partial upstream markup is steady state and never
// an error.
func ParseOrderSummary(fragment []byte) *OrderSummary {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(fragment))
	if err != nil {
		slog.Warn("failed to parse order summary html", "err", err)
		return nil
	}

	summary := &OrderSummary{
		CartTotal:   parseAmount(htmlutil.LabeledText(doc.Selection, labelCartTotal)),
		DeliveryFee: parseAmount(htmlutil.LabeledText(doc.Selection, labelDeliveryFee)),
		TotalAmount: parseAmount(htmlutil.LabeledText(doc.Selection, labelTotalAmount)),
	}

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, header *goquery.Selection) {
		section := htmlutil.CleanText(htmlutil.SelectionText(header))
		switch section {
		case sectionTacos:
			summary.Tacos = parseTacoSection(header)
		case sectionExtras:
			summary.Extras = parseItemSection(header)
		case sectionDrinks:
			summary.Drinks = parseItemSection(header)
		case sectionDesserts:
			summary.Desserts = parseItemSection(header)
		}
	})

	return summary
}

// sectionLines returns the text of every line element between a
// section header and the next header
func sectionLines(header *goquery.Selection) []string {
	var lines []string
	header.NextUntil("h1, h2, h3, h4, h5, h6").Each(func(_ int, el *goquery.Selection) {
		if el.Is("p, li") {
			lines = append(lines, htmlutil.CleanText(htmlutil.SelectionText(el)))
			return
		}
		el.Find("p, li").Each(func(_ int, inner *goquery.Selection) {
			lines = append(lines, htmlutil.CleanText(htmlutil.SelectionText(inner)))
		})
	})
	return lines
}

func parseItemSection(header *goquery.Selection) []SummaryItem {
	var items []SummaryItem
	for _, line := range sectionLines(header) {
		groups := summaryLineRegex.FindStringSubmatch(line)
		if len(groups) < 4 {
			continue
		}
		quantity, err := strconv.Atoi(groups[1])
		if err != nil {
			continue
		}
		items = append(items, SummaryItem{
			Quantity: quantity,
			Name:     groups[2],
			Price:    parseAmount(groups[3]),
		})
	}
	return items
}

// taco lines additionally carry "Viande: ..." / "Sauce: ..." detail
// lines, attached to the line item they follow
func parseTacoSection(header *goquery.Selection) []TacoSummaryItem {
	var items []TacoSummaryItem
	for _, line := range sectionLines(header) {
		if groups := summaryLineRegex.FindStringSubmatch(line); len(groups) >= 4 {
			quantity, err := strconv.Atoi(groups[1])
			if err != nil {
				continue
			}
			items = append(items, TacoSummaryItem{
				Quantity: quantity,
				Size:     groups[2],
				Price:    parseAmount(groups[3]),
			})
			continue
		}

		if len(items) == 0 {
			continue
		}
		last := &items[len(items)-1]
		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(label) {
		case "Viande", "Viandes":
			last.Meats = splitIngredientList(value)
		case "Sauce", "Sauces":
			last.Sauces = splitIngredientList(value)
		}
	}
	return items
}
