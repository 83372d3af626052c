// Package llmjson pulls a JSON object out of free-form model output.
//
// Models wrap answers in prose or markdown fences. Extraction is best effort:
// a fenced block wins when present, otherwise the first balanced {...} span is
// used, and as a last resort everything from the first '{' to the last '}'.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON reports that the text holds no recognisable JSON object.
var ErrNoJSON = errors.New("no json object in model output")

// ExtractObject returns the raw JSON object embedded in text.
func ExtractObject(text string) (string, error) {
	candidate := strings.TrimSpace(text)
	if fenced, ok := fencedBlock(candidate); ok {
		candidate = fenced
	}

	start := strings.IndexByte(candidate, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	if end := balancedEnd(candidate, start); end > start {
		return candidate[start : end+1], nil
	}

	end := strings.LastIndexByte(candidate, '}')
	if end <= start {
		return "", ErrNoJSON
	}
	return candidate[start : end+1], nil
}

// Decode extracts the object from text and unmarshals it into v.
func Decode(text string, v any) error {
	raw, err := ExtractObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode model json: %w", err)
	}
	return nil
}

func fencedBlock(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}
	body := text[open+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// skip the language tag
		if tag := strings.TrimSpace(body[:nl]); !strings.HasPrefix(tag, "{") {
			body = body[nl+1:]
		}
	}
	closing := strings.Index(body, "```")
	if closing < 0 {
		return "", false
	}
	block := strings.TrimSpace(body[:closing])
	if !strings.Contains(block, "{") {
		return "", false
	}
	return block, true
}

// balancedEnd returns the index of the brace closing the one at start, or -1.
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
