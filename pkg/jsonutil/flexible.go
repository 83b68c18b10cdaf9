// Package jsonutil decodes loosely typed values from analysis backend JSON.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var null = []byte("null")

// FlexibleStringValue renders a scalar as the string a user would see.
// Value-frequency tables carry strings, numbers or booleans depending on the
// column's source dtype; integral floats lose their fraction so 1.0 reads as
// "1". Null and empty input give "". Objects and arrays come back verbatim.
func FlexibleStringValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, null) {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case 't', 'f':
		if b, err := strconv.ParseBool(string(raw)); err == nil {
			return strconv.FormatBool(b)
		}
	case '{', '[':
		return string(raw)
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return formatNumber(f)
		}
	}
	return string(raw)
}

// FlexibleInt64 reads a count written as a JSON number or as a numeric
// string. Fractions are truncated. Anything else yields 0 and false.
func FlexibleInt64(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, null) {
		return 0, false
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
