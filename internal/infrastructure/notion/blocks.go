package notion

import (
	"time"
	"unicode/utf8"
)

// maxTextRunes is Notion's limit for a single rich text item.
const maxTextRunes = 2000

// Block is one child block of a page.
type Block map[string]any

func richText(content string) []map[string]any {
	if utf8.RuneCountInString(content) > maxTextRunes {
		content = string([]rune(content)[:maxTextRunes])
	}
	return []map[string]any{{
		"type": "text",
		"text": map[string]any{"content": content},
	}}
}

func textBlock(kind, content string) Block {
	return Block{
		"object": "block",
		"type":   kind,
		kind:     map[string]any{"rich_text": richText(content)},
	}
}

func heading(level int, content string) Block {
	switch level {
	case 1:
		return textBlock("heading_1", content)
	case 2:
		return textBlock("heading_2", content)
	default:
		return textBlock("heading_3", content)
	}
}

func paragraph(content string) Block { return textBlock("paragraph", content) }

func bullet(content string) Block { return textBlock("bulleted_list_item", content) }

func titleProp(content string) map[string]any {
	return map[string]any{"title": richText(content)}
}

func textProp(content string) map[string]any {
	return map[string]any{"rich_text": richText(content)}
}

func numberProp(n float64) map[string]any {
	return map[string]any{"number": n}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func dateProp(t time.Time) map[string]any {
	return map[string]any{"date": map[string]any{"start": t.Format(time.RFC3339)}}
}
