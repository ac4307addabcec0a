package model

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// jsonBlockPattern matches JSON inside markdown code fences: ```json { ... } ```
var jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")

// ErrNoJSON is returned when no JSON object can be located in a model
// response.
var ErrNoJSON = errors.New("no valid json found in model output")

// ExtractJSON pulls a JSON object out of a model response. Models wrap
// output in markdown fences, prepend prose, and emit trailing commas;
// all of that is stripped here before the caller unmarshals.
func ExtractJSON(s string) (string, error) {
	if matches := jsonBlockPattern.FindStringSubmatch(s); len(matches) > 1 {
		return stripTrailingCommas(matches[1]), nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoJSON
	}
	return stripTrailingCommas(s[start : end+1]), nil
}

// stripTrailingCommas removes commas directly preceding a closing brace
// or bracket. It tracks string state, so commas inside quoted values are
// left alone.
func stripTrailingCommas(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	runes := []rune(raw)
	inString := false
	escaped := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inString {
			b.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		if r == '"' {
			inString = true
			b.WriteRune(r)
			continue
		}
		if r == ',' {
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
