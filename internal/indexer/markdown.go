package indexer

import (
	"strings"

	"github.com/bankborjam/sebastian/internal/domain"
)

// Section is a contiguous slice of a Markdown document delimited by H1-H3
// headers. Header lines stay in the content; the header text is also lifted
// into the H1/H2/H3 fields so chunk metadata can carry provenance.
type Section struct {
	Content string
	H1      string
	H2      string
	H3      string
}

// splitByHeaders walks a Markdown document line by line and starts a new
// section at every H1, H2 or H3 header, inheriting the enclosing
// higher-level headers.
func splitByHeaders(text string) []Section {
	var sections []Section
	var buf strings.Builder
	var h1, h2, h3 string

	flush := func() {
		content := strings.TrimSpace(buf.String())
		if content != "" {
			sections = append(sections, Section{Content: content, H1: h1, H2: h2, H3: h3})
		}
		buf.Reset()
	}

	for line := range strings.Lines(text) {
		trimmed := strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(trimmed, "### "):
			flush()
			h3 = strings.TrimSpace(strings.TrimPrefix(trimmed, "### "))
		case strings.HasPrefix(trimmed, "## "):
			flush()
			h2 = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			h3 = ""
		case strings.HasPrefix(trimmed, "# "):
			flush()
			h1 = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			h2, h3 = "", ""
		}
		buf.WriteString(line)
	}
	flush()

	return sections
}

// classifyContent tags a chunk with a coarse banking content type based on
// indicator words. Matching is on lowercased content.
func classifyContent(content string) string {
	lower := strings.ToLower(content)

	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("requisito", "documento", "necesita"):
		return domain.ContentTypeRequirements
	case containsAny("tarifa", "costo", "precio", "comisión"):
		return domain.ContentTypePricing
	case containsAny("proceso", "paso", "cómo", "procedimiento"):
		return domain.ContentTypeProcedure
	case containsAny("beneficio", "ventaja", "característica"):
		return domain.ContentTypeFeatures
	default:
		return domain.ContentTypeGeneral
	}
}
