package markup

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Elements whose text never counts as visible page content
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"nav":      true,
	"footer":   true,
	"template": true,
}

// Block elements that end a run of text
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "blockquote": true, "ul": true, "ol": true,
}

var htmlTagPattern = regexp.MustCompile(`(?i)<(p|div|h[1-6]|ul|ol|li|a|br|span|strong|em|b|i|body|html|section|article|table|blockquote|nav|footer|script|style)[\s>/]`)

// LooksLikeHTML reports whether content carries HTML tags
func LooksLikeHTML(content string) bool {
	return htmlTagPattern.MatchString(content)
}

// VisibleText parses an HTML document and returns its visible text,
// skipping script, style, nav and footer subtrees.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	return visibleText(doc), nil
}

// StripMarkup returns plain text for either HTML or plain/markdown content.
// Unparseable HTML falls back to the raw content.
func StripMarkup(content string) string {
	if !LooksLikeHTML(content) {
		return content
	}
	text, err := VisibleText(content)
	if err != nil {
		return content
	}
	return text
}

func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

// SplitSentences splits text on . ! ? followed by whitespace or end of text.
// Returned sentences are trimmed and never empty.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.Join(strings.Fields(current.String()), " ")
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}

// Words returns the whitespace-separated tokens of text
func Words(text string) []string {
	return strings.Fields(text)
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Paragraphs returns the non-empty blocks of content. HTML content is
// split on block elements; plain text and markdown on blank lines.
func Paragraphs(content string) []string {
	var blocks []string
	if LooksLikeHTML(content) {
		blocks = htmlParagraphs(content)
	} else {
		blocks = paragraphBreak.Split(content, -1)
	}

	var paragraphs []string
	for _, block := range blocks {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

func htmlParagraphs(content string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return paragraphBreak.Split(content, -1)
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipElements[n.Data] {
				return
			}
			if n.Data == "p" {
				blocks = append(blocks, visibleText(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(blocks) == 0 {
		return strings.Split(visibleText(doc), "\n")
	}
	return blocks
}
