package model

import (
	"encoding/json"
	"strings"
)

// DecodeArguments parses the JSON argument string of a provider tool call.
// Empty or malformed input decodes to an empty object, which lets the tool
// report its required fields as missing.
func DecodeArguments(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}

// EncodeArguments renders tool call arguments as the JSON string providers expect.
func EncodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}
