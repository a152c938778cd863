package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when the text holds no {...} span.
var ErrNoJSONObject = errors.New("no json object in response")

// ExtractJSONObject returns the span from the first "{" to the last "}".
func ExtractJSONObject(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return clean[start : end+1], nil
}

// DecodeJSONObject scans raw model output for a JSON object and decodes it into target.
func DecodeJSONObject(raw string, target any) error {
	span, err := ExtractJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), target); err != nil {
		return fmt.Errorf("failed to parse json object: %w", err)
	}
	return nil
}
