package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// FlexFloat decodes JSON numbers and numeric strings alike. Values that carry
// no leading number decode to zero.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexFloat(ParseFloat(s))
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(n)
	return nil
}

// ParseFloat reads the longest numeric prefix of s, returning 0 when none exists.
func ParseFloat(s string) float64 {
	match := leadingNumber.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return n
}
