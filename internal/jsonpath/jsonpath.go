// Package jsonpath extracts values from engine JSON responses using paths
// like "results[0].alternatives[0].transcript" or "segments[*].text".
package jsonpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExtractTextFromResponse extracts text from JSON response using provided path.
func ExtractTextFromResponse(body []byte, textPath string) string {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return ""
	}

	if textPath != "" {
		if v, ok := ExtractByPath(root, textPath); ok {
			return v
		}
	}

	if m, ok := root.(map[string]interface{}); ok {
		if v, exists := m["text"]; exists {
			if s, ok := scalarString(v); ok {
				return s
			}
		}
		for _, val := range m {
			if s, ok := val.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Wildcard is the index value produced by "[*]".
const Wildcard = -1

// ExtractTexts returns every string reached by path, in document order.
// Each "[*]" fans out over all elements of an array.
func ExtractTexts(body []byte, path string) ([]string, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	cur := []interface{}{root}
	for _, part := range strings.Split(path, ".") {
		key, idxs, err := ParseKeyAndIndexes(part)
		if err != nil {
			return nil, err
		}
		var next []interface{}
		for _, node := range cur {
			next = append(next, step(node, key, idxs)...)
		}
		cur = next
	}
	out := make([]string, 0, len(cur))
	for _, v := range cur {
		if s, ok := scalarString(v); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func step(node interface{}, key string, idxs []int) []interface{} {
	if key != "" {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		v, exists := m[key]
		if !exists {
			return nil
		}
		node = v
	}
	nodes := []interface{}{node}
	for _, idx := range idxs {
		var next []interface{}
		for _, n := range nodes {
			arr, ok := n.([]interface{})
			if !ok {
				continue
			}
			if idx == Wildcard {
				next = append(next, arr...)
				continue
			}
			if idx >= 0 && idx < len(arr) {
				next = append(next, arr[idx])
			}
		}
		nodes = next
	}
	return nodes
}

func scalarString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s)), true
		}
		return fmt.Sprintf("%v", s), true
	case bool:
		return fmt.Sprintf("%v", s), true
	default:
		return "", false
	}
}

// ExtractByPath extracts a string value from a JSON-parsed structure using a dot-separated path.
func ExtractByPath(root interface{}, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	parts := strings.Split(path, ".")
	cur := root
	for _, part := range parts {
		key, idxs, err := ParseKeyAndIndexes(part)
		if err != nil {
			return "", false
		}

		if key != "" {
			m, ok := cur.(map[string]interface{})
			if !ok {
				return "", false
			}
			next, exists := m[key]
			if !exists {
				return "", false
			}
			cur = next
		}

		for _, idx := range idxs {
			arr, ok := cur.([]interface{})
			if !ok {
				return "", false
			}
			if idx == Wildcard || idx >= len(arr) {
				return "", false
			}
			cur = arr[idx]
		}
	}

	return scalarString(cur)
}

// ParseKeyAndIndexes parses a token like "foo[0][1]", "[0]", "items[*]" or "bar"
// into base key and indexes. "[*]" yields Wildcard.
func ParseKeyAndIndexes(token string) (string, []int, error) {
	if token == "" {
		return "", nil, fmt.Errorf("empty token")
	}
	idxs := []int{}
	br := strings.Index(token, "[")
	var key string
	if br == -1 {
		key = token
		return key, idxs, nil
	}
	key = token[:br]
	rest := token[br:]
	for len(rest) > 0 {
		if !strings.HasPrefix(rest, "[") {
			return "", nil, fmt.Errorf("invalid index syntax in %s", token)
		}
		closePos := strings.Index(rest, "]")
		if closePos == -1 {
			return "", nil, fmt.Errorf("missing closing ] in %s", token)
		}
		numStr := rest[1:closePos]
		if numStr == "" {
			return "", nil, fmt.Errorf("empty index in %s", token)
		}
		if numStr == "*" {
			idxs = append(idxs, Wildcard)
			rest = rest[closePos+1:]
			continue
		}
		n, err := strconv.Atoi(numStr)
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("invalid index '%s' in %s", numStr, token)
		}
		idxs = append(idxs, n)
		rest = rest[closePos+1:]
	}
	return key, idxs, nil
}
