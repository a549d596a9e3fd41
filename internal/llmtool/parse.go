package llmtool

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"schemefinder/internal/util/jsonutil"
)

// ErrMalformedResponse is returned when model output is not JSON or lacks the required key.
var ErrMalformedResponse = errors.New("llmtool: malformed response")

// DecodeObject strips a Markdown code fence from raw, parses it as a JSON object and decodes
// it into out. requiredKey must be present and hold a JSON array. Values are decoded as-is;
// a field of the wrong type is an error, not a conversion.
func DecodeObject(raw string, requiredKey string, out any) error {
	body := jsonutil.StripCodeFence(raw)
	if body == "" {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var top map[string]json.RawMessage
	if err := jsonutil.UnmarshalFlex([]byte(body), &top); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if requiredKey != "" {
		v, ok := top[requiredKey]
		if !ok {
			return fmt.Errorf("%w: missing %q", ErrMalformedResponse, requiredKey)
		}
		if !isArray(v) {
			return fmt.Errorf("%w: %q is not an array", ErrMalformedResponse, requiredKey)
		}
	}

	normalized, err := json.Marshal(top)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "[")
}
