package processor

import (
	"strings"
	"testing"
)

func TestXMLProcessor_Segments(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<!-- greeting catalogue -->
<catalog>
  <item id="1">Hello</item>
  <item id="2">Hello World</item>
  <item id="3">Hello</item>
  <note translate="no">Keep</note>
</catalog>`

	doc, err := NewXMLProcessor().Parse(content)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	segs := doc.Segments()
	if len(segs) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segs))
	}
	if segs[0].Text != "Hello" || segs[0].Occurrences() != 2 {
		t.Errorf("Expected Hello x2, got %q x%d", segs[0].Text, segs[0].Occurrences())
	}
	if segs[1].Tag != "item" {
		t.Errorf("Expected tag item, got %q", segs[1].Tag)
	}
}

func TestXMLDocument_Render(t *testing.T) {
	content := `<?xml version="1.0"?>
<!-- keep me -->
<root a="1"><msg> Hello </msg><![CDATA[raw <b>]]><msg>Test</msg></root>`

	doc, err := NewXMLProcessor().Parse(content)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, s := range doc.Segments() {
		switch s.Text {
		case "Hello":
			s.Apply("Bawo & co")
		case "Test":
			s.Apply("<Idanwo>")
		}
	}

	want := `<?xml version="1.0"?>
<!-- keep me -->
<root a="1"><msg> Bawo &amp; co </msg><![CDATA[raw <b>]]><msg>&lt;Idanwo&gt;</msg></root>`
	if got := doc.Render(); got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestXMLDocument_Render_Unapplied(t *testing.T) {
	content := `<a><b>one</b><b>two &amp; three</b></a>`

	doc, err := NewXMLProcessor().Parse(content)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.Render(); got != content {
		t.Errorf("Unapplied render should be identical, got %q", got)
	}

	segs := doc.Segments()
	if len(segs) != 2 || segs[1].Text != "two & three" {
		t.Fatalf("Expected decoded entity text, got %v", segs)
	}
}

func TestXMLProcessor_InvalidXML(t *testing.T) {
	_, err := NewXMLProcessor().Parse(`<a><b>unclosed</a>`)
	if err == nil {
		t.Fatal("Expected error for mismatched tags")
	}
	if !strings.Contains(err.Error(), "parsing XML") {
		t.Errorf("Unexpected error: %v", err)
	}
}
