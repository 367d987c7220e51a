package payload

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload is returned by Decode when the input is not a
// reversible encoding (bad base64 or invalid embedded JSON).
var ErrInvalidPayload = errors.New("payload: invalid encoded payload")

// Encode renders a JSON-shaped record as a URL-safe opaque string.
// The output needs no extra escaping inside a query parameter.
//
// This is a transport convenience, not a security boundary: the result
// is reversible by anyone holding it. Callers must always cross-check
// the session store and never act on a decoded payload alone.
func Encode(record map[string]any) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("payload: failed to marshal: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. It also accepts standard base64 with padding,
// which is what the legacy initiator extension produces.
func Decode(encoded string) (map[string]any, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.StdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return record, nil
}
