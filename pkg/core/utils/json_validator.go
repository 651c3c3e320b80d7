// Package utils holds shared helpers for taming LLM output: a lenient JSON
// parse cascade and markdown cleanup for narrative text.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes common LLM JSON defects (single quotes, trailing commas,
// unclosed braces, markdown code fences) using json-repair.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human JSON (comments, unquoted keys, optional commas)
// into the given schema. The most lenient step of the cascade.
func ParseHJSON(input string, schema interface{}) error {
	if err := hjson.Unmarshal([]byte(input), schema); err != nil {
		return fmt.Errorf("hjson parse failed: %w", err)
	}
	return nil
}

// SmartParse tries parsing strategies in order of strictness:
// standard JSON, then json-repair, then Hjson. The first strategy that
// unmarshals into schema wins.
func SmartParse(input string, schema interface{}) error {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if err := ParseHJSON(input, schema); err == nil {
		return nil
	}

	return fmt.Errorf("all JSON parsing strategies failed")
}

// ExtractJSONObject returns the outermost {...} region of a response, for
// models that wrap their JSON in prose.
func ExtractJSONObject(s string) string {
	start, end := -1, -1
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			if depth == 0 && start == -1 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start != -1 {
				end = i
			}
		}
	}
	if start == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}
