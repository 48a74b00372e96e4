package application

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nthomsencph/wikiworlds/internal/domain"
)

// Block content is editor JSON. Text-bearing block types store either a
// plain string, an HTML string, or an array of inline nodes under
// "text"; rendered HTML exports store markup under "html"; tables nest
// rows of cells. Media and layout blocks carry no countable text.

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// CountBlockCharacters returns the number of user-visible characters
// in one block, markup excluded.
func CountBlockCharacters(b domain.Block) int {
	switch b.BlockType {
	case domain.BlockImage, domain.BlockDivider, domain.BlockEmbed:
		return 0
	case domain.BlockCode:
		if code, ok := b.Content["code"].(string); ok {
			return utf8.RuneCountInString(code)
		}
		return 0
	case domain.BlockTable:
		return countTableCharacters(b.Content)
	default:
		if html, ok := b.Content["html"].(string); ok {
			return utf8.RuneCountInString(strings.TrimSpace(stripHTML(html)))
		}
		return utf8.RuneCountInString(extractText(b.Content["text"]))
	}
}

func countTableCharacters(content map[string]any) int {
	rows, ok := content["rows"].([]any)
	if !ok {
		return 0
	}
	total := 0
	for _, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			if m, isMap := row.(map[string]any); isMap {
				total += utf8.RuneCountInString(extractText(m["cells"]))
			}
			continue
		}
		for _, cell := range cells {
			total += utf8.RuneCountInString(extractText(cell))
		}
	}
	return total
}

// extractText flattens a rich-text node into its visible characters.
func extractText(node any) string {
	switch v := node.(type) {
	case string:
		return stripHTML(v)
	case []any:
		var b strings.Builder
		for _, child := range v {
			b.WriteString(extractText(child))
		}
		return b.String()
	case map[string]any:
		if text, ok := v["text"]; ok {
			return extractText(text)
		}
		if content, ok := v["content"]; ok {
			return extractText(content)
		}
		return ""
	default:
		return ""
	}
}

func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return htmlEntities.Replace(htmlTagPattern.ReplaceAllString(s, ""))
}
