package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// Structure counts the structural elements of a content item
type Structure struct {
	H1          int `json:"h1"`
	Subheadings int `json:"subheadings"` // Headings of level 2 or deeper
	H2          int `json:"h2"`
	Lists       int `json:"lists"`
	ListItems   int `json:"list_items"`
	Links       int `json:"links"`
}

// Analyze detects headings, lists and links in HTML or markdown content
func Analyze(content string) Structure {
	if LooksLikeHTML(content) {
		return analyzeHTML(content)
	}
	return analyzeMarkdown([]byte(content))
}

func analyzeMarkdown(source []byte) Structure {
	var s Structure

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 {
				s.H1++
			} else {
				s.Subheadings++
			}
			if node.Level == 2 {
				s.H2++
			}
		case *ast.List:
			s.Lists++
		case *ast.ListItem:
			s.ListItems++
		case *ast.Link, *ast.AutoLink:
			s.Links++
		}

		return ast.WalkContinue, nil
	})

	return s
}

func analyzeHTML(content string) Structure {
	var s Structure

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return s
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, _ := z.TagName()
		switch tag := string(name); tag {
		case "h1":
			s.H1++
		case "h2", "h3", "h4", "h5", "h6":
			s.Subheadings++
			if tag == "h2" {
				s.H2++
			}
		case "ul", "ol":
			s.Lists++
		case "li":
			s.ListItems++
		case "a":
			s.Links++
		}
	}
}
