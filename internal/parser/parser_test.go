package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"MPP SOP.pdf", false},
		{"module-3.md", false},
		{"lesson.docx", false},
		{"guide.html", false},
		{"notes.txt", false},
		{"data.csv", true},
		{"archive.zip", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): err = %v, wantErr = %v", tt.filename, err, tt.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("Appendix I.PDF") {
		t.Error("expected upper-case .PDF to be supported")
	}
	if IsSupportedExtension("script.py") {
		t.Error("expected .py to be unsupported")
	}
}

func TestTextParser_SinglePage(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("line one\n\nline two\n"), "notes.txt")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 {
		t.Errorf("expected page 1, got %d", doc.Pages[0].Number)
	}
	if !strings.Contains(doc.Pages[0].Text, "line two") {
		t.Errorf("page text missing content: %q", doc.Pages[0].Text)
	}
}

func TestTextParser_BlankFile(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("   \n\n  \n"), "blank.txt")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected 0 pages for blank file, got %d", len(doc.Pages))
	}
}

func TestMarkdownParser_SectionsBecomePages(t *testing.T) {
	src := `# Program Overview

The program pairs mentors with proteges.

# Eligibility

Mentors must hold an active agreement.

Proteges must qualify as small businesses.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(src), "module-1.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("expected sequential page numbers, got %d, %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	if !strings.Contains(doc.Pages[0].Text, "mentors with proteges") {
		t.Errorf("page 1 missing body text: %q", doc.Pages[0].Text)
	}
	if !strings.Contains(doc.Pages[1].Text, "Eligibility") {
		t.Errorf("page 2 missing heading: %q", doc.Pages[1].Text)
	}
	if !strings.Contains(doc.Pages[1].Text, "small businesses") {
		t.Errorf("page 2 missing second paragraph: %q", doc.Pages[1].Text)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader("just a paragraph with no headings"), "plain.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
}

func TestHTMLParser_SectionsBecomePages(t *testing.T) {
	src := `<html><head><title>Guide</title></head><body>
<h1>Reporting</h1>
<p>Reports are due semiannually.</p>
<h1>Reimbursement</h1>
<p>Costs are reimbursed per the agreement.</p>
<script>ignore()</script>
</body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(src), "guide.html")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if !strings.Contains(doc.Pages[0].Text, "semiannually") {
		t.Errorf("page 1 missing paragraph: %q", doc.Pages[0].Text)
	}
	if strings.Contains(doc.Pages[1].Text, "ignore()") {
		t.Errorf("script content leaked into page text: %q", doc.Pages[1].Text)
	}
}
