// Package textextract turns work item rich text into plain text for display
// and for model prompts.
package textextract

import (
	"strings"

	"golang.org/x/net/html"
)

// ToPlainText returns the visible text of an HTML fragment. Text segments keep
// document order and are joined with newlines; markup, comments and the bodies
// of script and style elements are dropped. Malformed markup is parsed best
// effort and never fails.
func ToPlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		// html.Parse only fails on reader errors, a strings.Reader has none.
		return strings.TrimSpace(fragment)
	}

	var segments []string
	collectText(doc, &segments)
	return strings.TrimSpace(strings.Join(segments, "\n"))
}

func collectText(n *html.Node, segments *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*segments = append(*segments, text)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skipElement(n.Data) {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, segments)
	}
}

func skipElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}
