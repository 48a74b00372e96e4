package application

import (
	"testing"

	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCountBlockCharacters(t *testing.T) {
	tests := []struct {
		name  string
		block domain.Block
		want  int
	}{
		{
			name: "plain paragraph",
			block: domain.Block{
				BlockType: domain.BlockParagraph,
				Content:   map[string]any{"text": "The last king of Gondor."},
			},
			want: 24,
		},
		{
			name: "html markup stripped",
			block: domain.Block{
				BlockType: domain.BlockParagraph,
				Content:   map[string]any{"text": "<p>He was <strong>crowned</strong>&nbsp;in&nbsp;3019.</p>"},
			},
			want: len("He was crowned in 3019."),
		},
		{
			name: "html entities decoded",
			block: domain.Block{
				BlockType: domain.BlockQuote,
				Content:   map[string]any{"text": "&lt;unknown&gt; &amp; &quot;forgotten&quot;"},
			},
			want: len(`<unknown> & "forgotten"`),
		},
		{
			name: "html key stripped and decoded",
			block: domain.Block{
				BlockType: domain.BlockParagraph,
				Content:   map[string]any{"html": "<p>He was&nbsp;crowned</p>"},
			},
			want: len("He was crowned"),
		},
		{
			name: "html key trims surrounding whitespace",
			block: domain.Block{
				BlockType: domain.BlockQuote,
				Content:   map[string]any{"html": "<div>\n  Rohan  \n</div>"},
			},
			want: len("Rohan"),
		},
		{
			name: "inline node array",
			block: domain.Block{
				BlockType: domain.BlockHeading1,
				Content: map[string]any{"text": []any{
					map[string]any{"text": "Minas "},
					map[string]any{"text": "Tirith"},
				}},
			},
			want: 12,
		},
		{
			name: "nested inline content",
			block: domain.Block{
				BlockType: domain.BlockBulletList,
				Content: map[string]any{"text": []any{
					map[string]any{"content": []any{
						map[string]any{"text": "First age"},
					}},
				}},
			},
			want: 9,
		},
		{
			name: "code block counts raw source",
			block: domain.Block{
				BlockType: domain.BlockCode,
				Content:   map[string]any{"code": "<not html>"},
			},
			want: 10,
		},
		{
			name: "table sums cells",
			block: domain.Block{
				BlockType: domain.BlockTable,
				Content: map[string]any{"rows": []any{
					[]any{"Year", "Event"},
					[]any{"3019", "Coronation"},
				}},
			},
			want: len("Year") + len("Event") + len("3019") + len("Coronation"),
		},
		{
			name: "image has no text",
			block: domain.Block{
				BlockType: domain.BlockImage,
				Content:   map[string]any{"url": "https://example.com/map.png", "caption": "ignored"},
			},
			want: 0,
		},
		{
			name: "divider has no text",
			block: domain.Block{
				BlockType: domain.BlockDivider,
				Content:   map[string]any{},
			},
			want: 0,
		},
		{
			name: "unicode counted by rune",
			block: domain.Block{
				BlockType: domain.BlockParagraph,
				Content:   map[string]any{"text": "Eärendil"},
			},
			want: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountBlockCharacters(tt.block))
		})
	}
}
