// Package render turns panel output into terminal text. Backend markup is
// untrusted: it is sanitized, converted to markdown and only then styled.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

const maxDepth = 64

var (
	policy            = bluemonday.UGCPolicy()
	multiNewlineRegex = regexp.MustCompile(`\n{3,}`)
	inlineSpaceRegex  = regexp.MustCompile(`[ \t\r\n\f]+`)
)

// Sanitize strips scripts, event handlers and anything else outside the
// user-generated-content allow list.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}

// ToMarkdown sanitizes markup and converts what is left to markdown.
func ToMarkdown(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(Sanitize(markup)))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	w := &mdWriter{}
	w.walk(doc, 0)
	return tidy(w.String()), nil
}

type mdWriter struct {
	strings.Builder
	pre     int
	ordinal []int
}

func (w *mdWriter) walk(n *html.Node, depth int) {
	if depth > maxDepth {
		return
	}
	switch n.Type {
	case html.TextNode:
		if w.pre > 0 {
			w.WriteString(n.Data)
			return
		}
		w.WriteString(inlineSpaceRegex.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode:
		if !w.open(n) {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, depth+1)
	}
	if n.Type == html.ElementNode {
		w.close(n)
	}
}

// open writes the prefix for n and reports whether its children should be
// visited.
func (w *mdWriter) open(n *html.Node) bool {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		w.WriteString("\n\n" + strings.Repeat("#", level) + " ")
	case "p", "div", "section", "article", "table":
		w.WriteString("\n\n")
	case "br":
		w.WriteString("\n")
	case "hr":
		w.WriteString("\n\n---\n\n")
		return false
	case "ul":
		w.ordinal = append(w.ordinal, 0)
		w.WriteString("\n")
	case "ol":
		w.ordinal = append(w.ordinal, 1)
		w.WriteString("\n")
	case "li":
		w.WriteString("\n" + strings.Repeat("  ", max(len(w.ordinal)-1, 0)))
		if k := len(w.ordinal) - 1; k >= 0 && w.ordinal[k] > 0 {
			fmt.Fprintf(w, "%d. ", w.ordinal[k])
			w.ordinal[k]++
		} else {
			w.WriteString("- ")
		}
	case "tr":
		w.WriteString("\n")
	case "td", "th":
		w.WriteString(" | ")
	case "blockquote":
		w.WriteString("\n\n> ")
	case "pre":
		w.pre++
		w.WriteString("\n\n```\n")
	case "code":
		if w.pre == 0 {
			w.WriteString("`")
		}
	case "strong", "b":
		w.WriteString("**")
	case "em", "i":
		w.WriteString("*")
	case "a":
		w.WriteString("[")
	case "img":
		if alt := attr(n, "alt"); alt != "" {
			fmt.Fprintf(w, "[Image: %s]", alt)
		}
		return false
	}
	return true
}

func (w *mdWriter) close(n *html.Node) {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6", "p", "blockquote":
		w.WriteString("\n\n")
	case "ul", "ol":
		if len(w.ordinal) > 0 {
			w.ordinal = w.ordinal[:len(w.ordinal)-1]
		}
		w.WriteString("\n")
	case "pre":
		w.pre--
		w.WriteString("\n```\n\n")
	case "code":
		if w.pre == 0 {
			w.WriteString("`")
		}
	case "strong", "b":
		w.WriteString("**")
	case "em", "i":
		w.WriteString("*")
	case "a":
		href := attr(n, "href")
		if href != "" && !strings.HasPrefix(href, "#") {
			fmt.Fprintf(w, "](%s)", href)
		} else {
			w.WriteString("]")
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			lines[i] = strings.TrimSpace(line)
			continue
		}
		if !inFence {
			lines[i] = strings.TrimRight(line, " ")
		}
	}
	s = strings.Join(lines, "\n")
	s = multiNewlineRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
