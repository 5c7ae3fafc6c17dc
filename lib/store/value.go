package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Value codec
// --------------------------------------------------------------------------

// Encode converts a value to its persisted form.
// Strings are persisted verbatim, everything else as JSON text.
func Encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", NewError(RetCInvalidOperation, fmt.Sprintf("value is not serializable: %v", err))
	}
	return string(data), nil
}

// Decode converts a persisted payload back to a value.
// An empty payload counts as absent. A payload starting with '{' is parsed as
// a JSON object, every other payload is returned as string.
func Decode(payload string) (any, bool, error) {
	if payload == "" {
		return nil, false, nil
	}
	if payload[0] != '{' {
		return payload, true, nil
	}
	var structured map[string]any
	if err := json.Unmarshal([]byte(payload), &structured); err != nil {
		return nil, false, NewError(RetCMalformedValue, fmt.Sprintf("payload is not valid JSON: %v", err))
	}
	return structured, true, nil
}

// IsFalsy reports whether value is nil, an empty string, a numeric zero or false.
func IsFalsy(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// --------------------------------------------------------------------------
// Typed helpers
// --------------------------------------------------------------------------

// GetString returns the value for key as text. Structured values are
// returned as their JSON form.
func GetString(s IStore, key string) (string, bool, error) {
	value, ok, err := s.Get(key)
	if err != nil || !ok {
		return "", false, err
	}
	if text, isText := value.(string); isText {
		return text, true, nil
	}
	text, err := Encode(value)
	return text, err == nil, err
}

// GetInt returns the value for key as integer. Both "12" and 12 are accepted.
func GetInt(s IStore, key string) (int, bool, error) {
	text, ok, err := GetString(s, key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false, NewError(RetCMalformedValue, fmt.Sprintf("%s is not an integer: %q", key, text))
	}
	return n, true, nil
}

// GetJSON decodes the value for key into out. Values persisted as JSON
// text that do not start with '{' (arrays, numbers) decode through here.
func GetJSON(s IStore, key string, out any) (bool, error) {
	text, ok, err := GetString(s, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return false, NewError(RetCMalformedValue, fmt.Sprintf("%s is not valid JSON: %v", key, err))
	}
	return true, nil
}
