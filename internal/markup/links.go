package markup

import (
	"net/url"
	"strings"

	"github.com/ppiankov/trustgate/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// ExtractCitations returns the absolute http(s) links in content together
// with their anchor text. The first occurrence of a URL wins.
func ExtractCitations(content string) []model.Citation {
	var citations []model.Citation
	if LooksLikeHTML(content) {
		citations = htmlCitations(content)
	} else {
		citations = markdownCitations([]byte(content))
	}
	return dedupeCitations(citations)
}

func htmlCitations(content string) []model.Citation {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var citations []model.Citation
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := ""
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = strings.TrimSpace(attr.Val)
				}
			}
			if normalized := normalizeLink(href); normalized != "" {
				citations = append(citations, model.Citation{
					URL:        normalized,
					AnchorText: strings.Join(strings.Fields(visibleText(n)), " "),
				})
			}
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return citations
}

func markdownCitations(source []byte) []model.Citation {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var citations []model.Citation
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Link:
			if normalized := normalizeLink(string(node.Destination)); normalized != "" {
				citations = append(citations, model.Citation{
					URL:        normalized,
					AnchorText: string(node.Text(source)),
				})
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if normalized := normalizeLink(string(node.URL(source))); normalized != "" {
				citations = append(citations, model.Citation{URL: normalized})
			}
		}

		return ast.WalkContinue, nil
	})

	return citations
}

// normalizeLink keeps absolute http(s) URLs and drops fragments-only,
// javascript: and mailto: links
func normalizeLink(href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if parsed.Host == "" {
		return ""
	}

	return parsed.String()
}

func dedupeCitations(citations []model.Citation) []model.Citation {
	seen := make(map[string]bool)
	var unique []model.Citation

	for _, c := range citations {
		if !seen[c.URL] {
			seen[c.URL] = true
			unique = append(unique, c)
		}
	}

	return unique
}
