// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmjson locates structured JSON inside loosely-structured model
// replies. Chat endpoints are unreliable in shape: sometimes the caller gets
// exactly the JSON it asked for, sometimes the object is wrapped in prose or
// code fences, and sometimes a transport envelope nests the payload inside a
// string-valued field. A single-level unmarshal is not robust enough, so the
// parser searches recursively and treats every parse failure as "not found
// here, keep looking".
package llmjson

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Parse normalizes resp to text and returns the first JSON object found
// anywhere inside it that contains at least one of the wanted keys. The
// search descends through nested objects, arrays, and strings that
// themselves encode JSON. It never panics on malformed input; if nothing
// usable is found the result is an empty, non-nil map.
func Parse(resp any, wanted ...string) map[string]any {
	if len(wanted) == 0 {
		return map[string]any{}
	}

	want := make(map[string]struct{}, len(wanted))
	for _, k := range wanted {
		want[k] = struct{}{}
	}

	var hit map[string]any
	scanObjects(normalize(resp), func(obj map[string]any) bool {
		if h, found := find(obj, want); found {
			hit = h
			return true
		}
		return false
	})
	if hit != nil {
		return hit
	}
	return map[string]any{}
}

// FirstObject locates the first balanced {...} span in s and parses it as a
// JSON object.
func FirstObject(s string) (map[string]any, bool) {
	var first map[string]any
	scanObjects(s, func(obj map[string]any) bool {
		first = obj
		return true
	})
	return first, first != nil
}

// scanObjects walks s left to right, parsing each balanced {...} span as a
// JSON object and handing it to fn. Brace depth is tracked explicitly rather
// than matching the first { to the last }, since free text may contain
// orphaned braces. A span that fails to parse advances the scan to the next
// {; a span that parses but does not satisfy fn advances the scan past it,
// so later sibling objects are still visited. Scanning stops when fn returns
// true or the text is exhausted.
func scanObjects(s string, fn func(map[string]any) bool) {
	s = stripFences(s)

	start := strings.IndexByte(s, '{')
	for start != -1 {
		resume := start + 1

		depth := 0
		for i := start; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(s[start:i+1]), &obj); err == nil {
					if fn(obj) {
						return
					}
					// Nested objects are reached through the value walk;
					// resume after the span to visit siblings only.
					resume = i + 1
				}
				break
			}
		}

		if resume >= len(s) {
			return
		}
		next := strings.IndexByte(s[resume:], '{')
		if next == -1 {
			return
		}
		start = resume + next
	}
}

// find walks a decoded value depth-first looking for a map that contains any
// wanted key. A map hit is returned whole and immediately; partial matches
// from siblings are never merged. The boolean distinguishes "not found" from
// a found-but-empty object.
func find(v any, want map[string]struct{}) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		for k := range want {
			if _, ok := val[k]; ok {
				return val, true
			}
		}
		// Sorted key order keeps the search deterministic across runs.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if hit, found := find(val[k], want); found {
				return hit, true
			}
		}
	case []any:
		for _, elem := range val {
			if hit, found := find(elem, want); found {
				return hit, true
			}
		}
	case string:
		// A string may encode another JSON document one level down
		// (e.g. a wrapper whose "text" field is itself serialized JSON).
		var hit map[string]any
		scanObjects(val, func(inner map[string]any) bool {
			if h, found := find(inner, want); found {
				hit = h
				return true
			}
			return false
		})
		if hit != nil {
			return hit, true
		}
	}
	return nil, false
}

// normalize renders resp as text. Non-string values are serialized so the
// brace scan can treat every response the same way.
func normalize(resp any) string {
	if s, ok := resp.(string); ok {
		return s
	}
	if data, err := json.Marshal(resp); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", resp)
}

// stripFences removes Markdown code-fence delimiter lines when the text is
// wrapped in them, leaving the fenced body intact.
func stripFences(s string) string {
	if !strings.HasPrefix(strings.TrimSpace(s), "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
