package processor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// XMLProcessor extracts text runs from XML documents.
type XMLProcessor struct{}

// NewXMLProcessor creates an XML processor.
func NewXMLProcessor() *XMLProcessor {
	return &XMLProcessor{}
}

// XMLDocument is a parsed XML document that can be re-rendered with
// translated text runs. Bytes outside the runs are kept as they were.
type XMLDocument struct {
	source   string
	runs     []*xmlRun
	segments []*Segment
}

type xmlRun struct {
	start, end int
	text       string // Replacement, already escaped
	replaced   bool
}

// Parse tokenizes content and collects every non-blank character-data run.
// CDATA sections and elements marked translate="no" are left alone.
func (p *XMLProcessor) Parse(content string) (*XMLDocument, error) {
	doc := &XMLDocument{source: content}
	set := newSegmentSet()

	d := xml.NewDecoder(strings.NewReader(content))
	// Input is decoded to UTF-8 before it gets here.
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var stack []string
	skipDepth := 0
	for {
		start := d.InputOffset()
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}
		end := int(d.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if skipDepth > 0 || xmlOptsOut(t) {
				skipDepth++
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if skipDepth > 0 {
				skipDepth--
			}
		case xml.CharData:
			if skipDepth > 0 || len(stack) == 0 {
				continue
			}
			raw := content[start:end]
			if strings.HasPrefix(raw, "<![CDATA[") {
				continue
			}
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			run := &xmlRun{start: int(start), end: end}
			doc.runs = append(doc.runs, run)
			set.add(text, stack[len(stack)-1], func(translated string) {
				run.text = xmlTextEscaper.Replace(PreserveWhitespace(text, translated))
				run.replaced = true
			})
		}
	}

	doc.segments = set.order
	return doc, nil
}

func xmlOptsOut(el xml.StartElement) bool {
	for _, attr := range el.Attr {
		if attr.Name.Local == "data-no-translate" {
			return true
		}
		if attr.Name.Local == "translate" && strings.EqualFold(attr.Value, "no") {
			return true
		}
	}
	return false
}

// Segments returns the document's translatable segments in document order.
func (d *XMLDocument) Segments() []*Segment {
	return d.segments
}

// Render returns the document with applied translations spliced in.
func (d *XMLDocument) Render() string {
	runs := make([]*xmlRun, len(d.runs))
	copy(runs, d.runs)
	sort.Slice(runs, func(i, j int) bool { return runs[i].start < runs[j].start })

	var buf bytes.Buffer
	buf.Grow(len(d.source))
	pos := 0
	for _, r := range runs {
		if !r.replaced {
			continue
		}
		buf.WriteString(d.source[pos:r.start])
		buf.WriteString(r.text)
		pos = r.end
	}
	buf.WriteString(d.source[pos:])
	return buf.String()
}
