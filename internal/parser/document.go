package parser

// Document is a parsed source file with page-tracked text.
type Document struct {
	Name  string // File name, used verbatim in citations.
	Path  string // Full path on disk.
	Pages []Page
}

// Page holds the text of one page. Numbers are 1-based. For formats without
// native pagination (markdown, html, docx, txt) the parser assigns sequential
// section-based page numbers so citations still point at something stable.
type Page struct {
	Number int
	Text   string
}
