// Package processor locates translatable text in HTML and XML markup and
// writes translations back in place.
package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Format names a markup flavour.
type Format string

const (
	// FormatHTML parses with the HTML5 tokenizer.
	FormatHTML Format = "html"
	// FormatXML parses with encoding/xml and keeps every byte outside text runs.
	FormatXML Format = "xml"
)

// Segment is a unit of translatable text. All occurrences of the same trimmed
// text in one document share a Segment, so it is translated once.
type Segment struct {
	Text string // Trimmed text content
	Hash string // SHA-256 of Text
	Tag  string // Enclosing element of the first occurrence

	targets []func(translated string)
}

// Occurrences returns how many places in the document carry this text.
func (s *Segment) Occurrences() int {
	return len(s.targets)
}

// Apply writes translated to every occurrence, keeping each occurrence's
// leading and trailing whitespace.
func (s *Segment) Apply(translated string) {
	for _, set := range s.targets {
		set(translated)
	}
}

// segmentSet groups occurrences by text hash, preserving first-seen order.
type segmentSet struct {
	byHash map[string]*Segment
	order  []*Segment
}

func newSegmentSet() *segmentSet {
	return &segmentSet{byHash: make(map[string]*Segment)}
}

func (s *segmentSet) add(text, tag string, set func(string)) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	hash := HashText(trimmed)
	seg, ok := s.byHash[hash]
	if !ok {
		seg = &Segment{Text: trimmed, Hash: hash, Tag: tag}
		s.byHash[hash] = seg
		s.order = append(s.order, seg)
	}
	seg.targets = append(seg.targets, set)
}

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(hash[:])
}

// PreserveWhitespace returns translated wrapped in original's leading and
// trailing whitespace. Whitespace is anything unicode.IsSpace accepts, so
// non-breaking spaces survive.
func PreserveWhitespace(original, translated string) string {
	core := strings.TrimLeftFunc(original, unicode.IsSpace)
	leading := original[:len(original)-len(core)]
	trailing := core[len(strings.TrimRightFunc(core, unicode.IsSpace)):]

	return leading + strings.TrimSpace(translated) + trailing
}
