package processor

import (
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	tagsMu sync.RWMutex

	// defaultTags contains HTML elements whose text is translated.
	defaultTags = map[string]bool{
		"a": true, "abbr": true, "acronym": true, "address": true, "b": true,
		"bdo": true, "big": true, "button": true, "caption": true, "cite": true,
		"code": true, "dd": true, "del": true, "dfn": true, "dt": true,
		"em": true, "h1": true, "h2": true, "h3": true, "h4": true,
		"h5": true, "h6": true, "i": true, "input": true, "ins": true,
		"kbd": true, "label": true, "legend": true, "li": true, "option": true,
		"p": true, "pre": true, "q": true, "s": true, "samp": true,
		"small": true, "span": true, "strong": true, "sub": true, "sup": true,
		"td": true, "textarea": true, "th": true, "title": true, "tt": true,
		"u": true, "var": true,
	}
)

// AddTranslatableTag adds an element name to the process-wide default set.
// Processors created afterwards pick it up.
func AddTranslatableTag(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return
	}
	tagsMu.Lock()
	defer tagsMu.Unlock()
	defaultTags[tag] = true
}

// TranslatableTags returns the default set, sorted.
func TranslatableTags() []string {
	tagsMu.RLock()
	defer tagsMu.RUnlock()

	tags := make([]string, 0, len(defaultTags))
	for tag := range defaultTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// HTMLProcessor extracts and applies translations to HTML content.
type HTMLProcessor struct {
	tags map[string]bool
}

// NewHTMLProcessor creates an HTML processor with the default translatable tags.
func NewHTMLProcessor() *HTMLProcessor {
	return NewHTMLProcessorWithTags(TranslatableTags())
}

// NewHTMLProcessorWithTags creates an HTML processor translating only tags.
func NewHTMLProcessorWithTags(tags []string) *HTMLProcessor {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{tags: set}
}

// Parse parses HTML into a document.
func (p *HTMLProcessor) Parse(content string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(content))
}

// Segments walks sel and its descendants and collects the strings of every
// translatable element.
func (p *HTMLProcessor) Segments(sel *goquery.Selection) []*Segment {
	set := newSegmentSet()
	seen := make(map[*html.Node]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipSubtree(n) {
				return
			}
			if p.tags[strings.ToLower(n.Data)] {
				p.collect(set, seen, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return set.order
}

// TagSegments collects the strings of the selected elements only, whatever
// their tag.
func (p *HTMLProcessor) TagSegments(sel *goquery.Selection) []*Segment {
	set := newSegmentSet()
	seen := make(map[*html.Node]bool)
	for _, n := range sel.Nodes {
		if n.Type == html.ElementNode {
			p.collect(set, seen, n)
		}
	}
	return set.order
}

func (p *HTMLProcessor) collect(set *segmentSet, seen map[*html.Node]bool, el *html.Node) {
	text := stringNode(el)
	// Nested single-child chains (<p><b>x</b></p>) reach the same text node twice.
	if text == nil || seen[text] {
		return
	}
	seen[text] = true

	original := text.Data
	set.add(original, el.Data, func(translated string) {
		text.Data = PreserveWhitespace(original, translated)
	})
}

// stringNode returns the element's only text child, following chains of
// elements that each have exactly one child.
func stringNode(n *html.Node) *html.Node {
	for n != nil {
		c := n.FirstChild
		if c == nil || c.NextSibling != nil {
			return nil
		}
		switch c.Type {
		case html.TextNode:
			return c
		case html.ElementNode:
			n = c
		default:
			return nil
		}
	}
	return nil
}

// skipSubtree reports whether an element opts out of translation.
func skipSubtree(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "data-no-translate" {
			return true
		}
		if attr.Key == "translate" && strings.EqualFold(attr.Val, "no") {
			return true
		}
	}
	return false
}

// IsDocument reports whether content is a full document rather than a fragment.
func IsDocument(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype")
}

// HasHTMLElement reports whether content carries its own <html> start tag,
// as opposed to one the parser synthesises.
func HasHTMLElement(content string) bool {
	lower := strings.ToLower(content)
	for i := strings.Index(lower, "<html"); i >= 0; {
		rest := lower[i+len("<html"):]
		if rest == "" || strings.ContainsRune(" \t\n\r\f/>", rune(rest[0])) {
			return true
		}
		next := strings.Index(rest, "<html")
		if next < 0 {
			break
		}
		i += len("<html") + next
	}
	return false
}

// SetDocumentLanguage sets lang and dir on the <html> element.
func SetDocumentLanguage(doc *goquery.Document, lang, dir string) {
	htmlTag := doc.Find("html")
	if htmlTag.Length() > 0 {
		htmlTag.SetAttr("lang", lang)
		htmlTag.SetAttr("dir", dir)
	}
}

// Render serialises doc. Fragments are rendered without the html, head and
// body wrappers the parser adds.
func (p *HTMLProcessor) Render(doc *goquery.Document, fragment bool) (string, error) {
	if !fragment {
		return doc.Html()
	}

	head, err := doc.Find("head").Html()
	if err != nil {
		return "", err
	}
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return head + body, nil
}
