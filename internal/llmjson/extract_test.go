package llmjson

import (
	"errors"
	"testing"
)

func TestExtractObject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "clean json",
			input: `{"trends": [], "confidence_score": 0.5}`,
			want:  `{"trends": [], "confidence_score": 0.5}`,
		},
		{
			name:  "fenced block",
			input: "Here you go:\n```json\n{\"executive_summary\": \"ok\"}\n```\nThanks!",
			want:  `{"executive_summary": "ok"}`,
		},
		{
			name:  "fenced block without language tag",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "trailing prose",
			input: `Sure. {"a": {"b": "}"}} Let me know if you need {more}.`,
			want:  `{"a": {"b": "}"}}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"quote": "she said \"wow\" }"} tail`,
			want:  `{"quote": "she said \"wow\" }"}`,
		},
		{
			name:  "unbalanced falls back to last brace",
			input: `prefix {"a": {"b": 1} done`,
			want:  `{"a": {"b": 1}`,
		},
		{
			name:    "no json",
			input:   "I could not find any trends today.",
			wantErr: ErrNoJSON,
		},
		{
			name:    "closing brace before opening",
			input:   "} nothing {",
			wantErr: ErrNoJSON,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExtractObject(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v (result %q)", tc.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	var payload struct {
		Summary string  `json:"executive_summary"`
		Score   float64 `json:"confidence_score"`
	}
	if err := Decode("```json\n{\"executive_summary\":\"hi\",\"confidence_score\":0.8}\n```", &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Summary != "hi" || payload.Score != 0.8 {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	if err := Decode(`{"executive_summary": }`, &payload); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	if err := Decode("nothing here", &payload); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}
