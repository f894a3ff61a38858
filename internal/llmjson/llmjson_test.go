// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llmjson

import (
	"reflect"
	"testing"
)

// --- FirstObject ---

func TestFirstObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
		ok   bool
	}{
		{
			name: "bare object",
			in:   `{"label": "YES"}`,
			want: map[string]any{"label": "YES"},
			ok:   true,
		},
		{
			name: "object inside prose",
			in:   `Sure, here is the answer: {"label": "NO"} hope that helps`,
			want: map[string]any{"label": "NO"},
			ok:   true,
		},
		{
			name: "orphan close brace before the real object",
			in:   `weird } artifact {"question": "Q?"} trailing`,
			want: map[string]any{"question": "Q?"},
			ok:   true,
		},
		{
			name: "orphan open brace skipped after parse failure",
			in:   `{ not json at all, then {"answer": "A"} end`,
			want: map[string]any{"answer": "A"},
			ok:   true,
		},
		{
			name: "nested object returned whole",
			in:   `{"data": {"text": "hi"}}`,
			want: map[string]any{"data": map[string]any{"text": "hi"}},
			ok:   true,
		},
		{
			name: "code fences stripped",
			in:   "```json\n{\"label\": \"UNCERTAIN\"}\n```",
			want: map[string]any{"label": "UNCERTAIN"},
			ok:   true,
		},
		{
			name: "no object",
			in:   "the abstract focuses on soil carbon",
			ok:   false,
		},
		{
			name: "unbalanced only",
			in:   "{{{",
			ok:   false,
		},
		{
			name: "empty string",
			in:   "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstObject(tt.in)
			if ok != tt.ok {
				t.Fatalf("FirstObject(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if tt.ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FirstObject(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

// --- Parse ---

func TestParseTopLevelHit(t *testing.T) {
	got := Parse(`{"label": "YES", "reason": "mentions MDD"}`, "label")
	if got["label"] != "YES" {
		t.Errorf("label = %v, want YES", got["label"])
	}
}

func TestParseNestedStringUnwrap(t *testing.T) {
	resp := `{"data": {"text": "{\"question\": \"Q\", \"answer\": \"A\"}"}}`
	got := Parse(resp, "question", "answer")
	want := map[string]any{"question": "Q", "answer": "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %#v, want %#v", got, want)
	}
}

func TestParseDescendsListsAndMaps(t *testing.T) {
	resp := `{"choices": [{"message": {"content": "{\"type\": \"sa\", \"question\": \"Q?\"}"}}]}`
	got := Parse(resp, "type", "question", "answer", "explanation")
	if got["question"] != "Q?" {
		t.Errorf("question = %v, want Q?", got["question"])
	}
}

func TestParseNonStringResponse(t *testing.T) {
	resp := map[string]any{
		"envelope": map[string]any{"answer": "A", "explanation": "E"},
	}
	got := Parse(resp, "answer")
	if got["answer"] != "A" {
		t.Errorf("answer = %v, want A", got["answer"])
	}
}

func TestParseNoMatchNoCrash(t *testing.T) {
	inputs := []any{
		"plain prose with no structure",
		"almost { json but not quite",
		`{"other_key": 1}`,
		"}{",
		"",
		nil,
		42,
		[]any{"a", "b"},
	}
	for _, in := range inputs {
		got := Parse(in, "label")
		if got == nil {
			t.Fatalf("Parse(%v) returned nil, want empty map", in)
		}
		if len(got) != 0 {
			t.Errorf("Parse(%v) = %#v, want empty", in, got)
		}
	}
}

func TestParseReturnsFirstBalancedObjectWithWantedKey(t *testing.T) {
	// The leading objects lack wanted keys; the parser must keep searching
	// rather than give up or merge siblings.
	resp := `{"meta": {"tokens": 12}} and then {"label": "NO", "confidence": "high"}`
	got := Parse(resp, "label")
	if got["label"] != "NO" {
		t.Errorf("label = %v, want NO", got["label"])
	}
	if _, ok := got["tokens"]; ok {
		t.Error("sibling keys merged into result")
	}
}

func TestParseEmptyWantedKeys(t *testing.T) {
	got := Parse(`{"label": "YES"}`)
	if len(got) != 0 {
		t.Errorf("Parse with no wanted keys = %#v, want empty", got)
	}
}

func TestParseFencedEnvelope(t *testing.T) {
	resp := "```\n{\"type\": \"sa\", \"question\": \"Q?\", \"answer\": \"A\", \"explanation\": \"E\"}\n```"
	got := Parse(resp, "type", "question", "answer", "explanation")
	if got["answer"] != "A" || got["explanation"] != "E" {
		t.Errorf("fenced parse = %#v", got)
	}
}
