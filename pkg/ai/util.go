package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// GenerateSchema creates a JSON Schema from the given Go type, suitable for
// structured-output requests. References are inlined and additional
// properties disallowed so the schema is self-contained and strict.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// UnmarshalFlexible parses model-generated JSON into out with fallback
// strategies: standard unmarshal first, then double-encoded strings, then a
// repair pass for malformed output (unquoted keys, trailing commas, stray
// braces).
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, input)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: input=%s repaired=%s", input, repaired)
	}
	return nil
}

// SanitizeLabel normalizes a model-generated label: strips quotes, markdown
// emphasis, and surrounding whitespace, and collapses it to a single line.
// Returns "" when nothing usable remains, which callers treat as a failed
// label request.
func SanitizeLabel(raw string) string {
	label := strings.TrimSpace(raw)
	if idx := strings.IndexAny(label, "\r\n"); idx >= 0 {
		label = label[:idx]
	}
	label = strings.Trim(label, "\"'`*_ ")
	label = strings.TrimSuffix(label, ".")
	return strings.TrimSpace(label)
}
