package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

// SelectionText concatenates the text content of every node in sel.
func SelectionText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, node := range sel.Nodes {
		buffer.WriteString(GetText(node))
	}
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// collapses inner whitespace runs and strips non-printable characters,
// the upstream templates are full of both
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// finds the first <p> whose <strong> label matches `label`, falling
// back to the first <p> whose full text contains `label` anywhere
func FindLabeledParagraph(sel *goquery.Selection, label string) *goquery.Selection {
	var found *goquery.Selection
	sel.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		strong := CleanText(SelectionText(p.Find("strong")))
		if strings.Contains(strong, label) {
			found = p
			return false
		}
		return true
	})
	if found != nil {
		return found
	}
	sel.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if strings.Contains(CleanText(SelectionText(p)), label) {
			found = p
			return false
		}
		return true
	})
	return found
}

// the upstream renders "<strong>Label:</strong> value" paragraphs,
// the value is whatever follows the first colon
func TextAfterColon(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	text := CleanText(SelectionText(sel))
	idx := strings.Index(text, ":")
	if idx < 0 {
		return ""
	}
	return strings.Trim(text[idx+1:], " \t\n")
}

func LabeledText(sel *goquery.Selection, label string) string {
	return TextAfterColon(FindLabeledParagraph(sel, label))
}
