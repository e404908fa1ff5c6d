package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

var (
	quizKeys      = []string{"question", "options", "correct_answer", "explanation"}
	flashcardKeys = []string{"term", "definition"}
)

// extractJSONArray pulls the first JSON array of objects out of free-form
// generator text. Candidates start at a '[' whose next non-space byte opens an
// object and run to the bracket that balances it. When there is no such array
// the first balanced object is wrapped as a one-element array, and only then
// is an empty "[]" accepted.
func extractJSONArray(raw string) (string, bool) {
	if arr, ok := findArray(raw, '{'); ok {
		return arr, true
	}

	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		if end, ok := matchBracket(raw, i, '{', '}'); ok {
			return "[" + raw[i:end+1] + "]", true
		}
	}

	return findArray(raw, ']')
}

// findArray returns the first balanced array whose first non-space byte
// after '[' is first.
func findArray(raw string, first byte) (string, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}
		next := skipSpace(raw, i+1)
		if next >= len(raw) || raw[next] != first {
			continue
		}
		if end, ok := matchBracket(raw, i, '[', ']'); ok {
			return raw[i : end+1], true
		}
	}
	return "", false
}

func skipSpace(s string, i int) int {
	for i < len(s) && strings.IndexByte(" \t\r\n", s[i]) >= 0 {
		i++
	}
	return i
}

// matchBracket returns the index of the closer that balances s[start].
// Brackets inside JSON strings are ignored.
func matchBracket(s string, start int, opener, closer byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// parseGenerated extracts and decodes a list of T from generator output.
// Only the first element is checked for the required keys.
func parseGenerated[T any](raw, kind string, required []string, allowEmpty bool) ([]T, error) {
	fail := func(format string, args ...interface{}) error {
		return &GenerationParseError{
			Message: fmt.Sprintf("Failed to process AI response for %s: %s", kind, fmt.Sprintf(format, args...)),
			Raw:     raw,
		}
	}

	candidate, ok := extractJSONArray(raw)
	if !ok {
		return nil, fail("could not find a JSON list or object in the response")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &elems); err != nil {
		return nil, fail("%v", err)
	}
	if len(elems) == 0 {
		if allowEmpty {
			return []T{}, nil
		}
		return nil, fail("parsed JSON list is empty")
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(elems[0], &first); err != nil {
		return nil, fail("list elements are not objects")
	}
	var missing []string
	for _, key := range required {
		if _, ok := first[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fail("parsed JSON object missing required keys: %s", strings.Join(missing, ", "))
	}

	items := make([]T, 0, len(elems))
	if err := json.Unmarshal([]byte(candidate), &items); err != nil {
		return nil, fail("%v", err)
	}
	return items, nil
}
