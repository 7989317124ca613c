package generate

import (
	"fmt"
	"strings"

	"github.com/regdocs/regrag/internal/retrieve"
)

const answerSystemPrompt = `You are an expert on the DoD Mentor-Protege Program (MPP).

CRITICAL RULES:
1. ONLY use information from the provided context
2. ALWAYS cite sources using [1], [2], etc.
3. If information is not in the context, say "This information is not found in the provided documents"
4. Quote exact text when possible
5. Be precise and accurate - this is regulatory documentation

Format citations like: "According to the MPP SOP [1], mentors must..."`

const alignmentSystemPrompt = `You are analyzing alignment between DoD MPP modules and core documentation.`

func answerUserPrompt(question string, sources []retrieve.Result) string {
	var ctxBuf strings.Builder
	for i, s := range sources {
		fmt.Fprintf(&ctxBuf, "[%d] Document: %s, Page: %d\n%s\n\n", i+1, s.Document, s.Page, s.Text)
	}
	return fmt.Sprintf(`Question: %s

Context from MPP Documentation:
%s
Provide a detailed answer with exact citations.`, question, ctxBuf.String())
}

func alignmentUserPrompt(query string, moduleSide, coreSide []retrieve.Result) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Compare these module and core document excerpts about: %s\n\n", query)

	buf.WriteString("MODULE CONTENT:\n")
	writeExcerpts(&buf, moduleSide)
	buf.WriteString("\nCORE DOCUMENT CONTENT:\n")
	writeExcerpts(&buf, coreSide)

	buf.WriteString(`
Analyze:
1. Do the modules align with core documents?
2. Are there any contradictions?
3. What are the key authoritative statements from core docs?

Be specific and cite page numbers.`)
	return buf.String()
}

func writeExcerpts(buf *strings.Builder, sources []retrieve.Result) {
	for i, s := range sources {
		fmt.Fprintf(buf, "%d. %s p.%d: %s\n", i+1, s.Document, s.Page, Truncate(s.Text, 300))
	}
}

// Truncate shortens text to at most n bytes, appending an ellipsis marker.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
