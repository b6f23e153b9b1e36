package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes common hand-editing mistakes: missing or single quotes, trailing
// commas, comments, unclosed objects and surrounding code fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON converts Hjson (comments, unquoted keys, optional commas) to standard JSON.
func ParseHJSON(data []byte) ([]byte, error) {
	var result interface{}
	if err := hjson.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return out, nil
}

// ParseHJSONToStruct parses Hjson directly into v.
func ParseHJSONToStruct(data []byte, v interface{}) error {
	if err := hjson.Unmarshal(data, v); err != nil {
		return fmt.Errorf("HJSON_UNMARSHAL_ERROR: %v", err)
	}
	return nil
}

// SmartParse decodes input into v, trying progressively more lenient strategies:
// 1. Standard JSON
// 2. JSON repair
// 3. Hjson
// It returns the strategy that succeeded.
func SmartParse(input []byte, v interface{}) (string, error) {
	// Try 1: Standard JSON
	if err := json.Unmarshal(input, v); err == nil {
		return "json", nil
	}

	// Try 2: JSON Repair
	if repaired, err := RepairJSON(string(input)); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return "repair", nil
		}
	}

	// Try 3: Hjson (most lenient)
	if converted, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal(converted, v); err == nil {
			return "hjson", nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed for input")
}
