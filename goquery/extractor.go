// Package goquery implements pagelens.Extractor on top of goquery and
// cascadia selectors.
package goquery

import (
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pagelens"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Extractor implements pagelens.Extractor at compile time.
var _ pagelens.Extractor = (*Extractor)(nil)

// Extractor derives title, text, links, images and custom selector results
// from markup. It is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses markup and returns its structured fields.
//
// Malformed markup degrades to best-effort results. The only error is EPARSE
// for an invalid custom selector, reported before the markup is parsed.
func (e *Extractor) Extract(markup string, baseURL string, selectors map[string]string) (*pagelens.Extraction, error) {
	matchers, err := compileSelectors(selectors)
	if err != nil {
		return nil, err
	}

	ex := &pagelens.Extraction{
		Links:  []string{},
		Images: []pagelens.Image{},
	}
	if selectors != nil {
		ex.Custom = make(map[string][]string, len(selectors))
		for name := range selectors {
			ex.Custom[name] = []string{}
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ex, nil
	}

	var base *url.URL
	if u, err := url.Parse(strings.TrimSpace(baseURL)); err == nil {
		base = u
	}

	ex.Title = normalizeSpace(documentTitle(doc).Text())
	ex.Text = visibleText(doc.Find("body").Nodes...)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if link := resolveURL(base, href); link != "" {
			ex.Links = append(ex.Links, link)
		}
	})

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		resolved := resolveURL(base, src)
		if resolved == "" {
			return
		}
		alt, _ := sel.Attr("alt")
		ex.Images = append(ex.Images, pagelens.Image{Src: resolved, Alt: strings.TrimSpace(alt)})
	})

	for _, m := range matchers {
		doc.FindMatcher(m.matcher).Each(func(_ int, sel *goquery.Selection) {
			ex.Custom[m.name] = append(ex.Custom[m.name], visibleText(sel.Nodes...))
		})
	}

	return ex, nil
}

type namedMatcher struct {
	name    string
	matcher cascadia.Selector
}

// compileSelectors compiles every selector in name order so the reported
// error is deterministic.
func compileSelectors(selectors map[string]string) ([]namedMatcher, error) {
	names := make([]string, 0, len(selectors))
	for name := range selectors {
		names = append(names, name)
	}
	slices.Sort(names)

	matchers := make([]namedMatcher, 0, len(names))
	for _, name := range names {
		raw := selectors[name]
		if strings.TrimSpace(raw) == "" {
			return nil, pagelens.Errorf(pagelens.EPARSE, "invalid selector %q for %q: empty selector", raw, name)
		}
		matcher, err := cascadia.Compile(raw)
		if err != nil {
			return nil, pagelens.Errorf(pagelens.EPARSE, "invalid selector %q for %q: %v", raw, name, err)
		}
		matchers = append(matchers, namedMatcher{name: name, matcher: matcher})
	}
	return matchers, nil
}

// resolveURL resolves href against base. It returns an empty string for
// references that add no destination: empty, fragment-only, non-HTTP schemes
// and unparsable values. Absolute references are returned unchanged.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return href
	}
	if base == nil || !base.IsAbs() {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// visibleText concatenates the text below nodes in document order, skipping
// non-rendered elements and separating block elements with a space.
func visibleText(nodes ...*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if hiddenElements[n.DataAtom] {
				return
			}
		case html.CommentNode, html.DoctypeNode:
			return
		}
		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return normalizeSpace(b.String())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var hiddenElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Title:    true,
	atom.Head:     true,
}

var blockElements = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Br:         true,
	atom.Dd:         true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Figcaption: true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Nav:        true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Td:         true,
	atom.Th:         true,
	atom.Tr:         true,
	atom.Ul:         true,
}

// documentTitle returns the first head title, or else the first title that is
// not part of inline SVG.
func documentTitle(doc *goquery.Document) *goquery.Selection {
	if title := doc.Find("head > title").First(); title.Length() > 0 {
		return title
	}
	return doc.Find("title").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.ParentsFiltered("svg").Length() == 0
	}).First()
}
