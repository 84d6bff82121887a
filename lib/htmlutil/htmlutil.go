package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
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

// SelectText returns the trimmed text of the first node matching `selector`,
// ok is false if nothing matched or the node is empty.
func SelectText(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector)
	if len(sel.Nodes) == 0 {
		return "", false
	}
	text := strings.TrimSpace(GetText(sel.Nodes[0]))
	return text, text != ""
}

// ScriptsContaining returns the text of every <script> whose contents contain `needle`,
// in document order.
func ScriptsContaining(doc *goquery.Document, needle string) []string {
	var out []string
	for _, script := range doc.Find("script").Nodes {
		text := GetText(script)
		if strings.Contains(text, needle) {
			out = append(out, text)
		}
	}
	return out
}
