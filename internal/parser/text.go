package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. The whole file becomes a single page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := &Document{Name: filename}
	if strings.TrimSpace(buf.String()) != "" {
		doc.Pages = []Page{{Number: 1, Text: buf.String()}}
	}
	return doc, nil
}
