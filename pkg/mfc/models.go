package mfc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ItemsResponse is the top-level api_v2.php response for object=items
type ItemsResponse struct {
	Items ItemsEnvelope `json:"items"`
}

// ItemsEnvelope holds the match count and the raw item payload.
// Item stays raw because its shape is only defined when Count is 1.
type ItemsEnvelope struct {
	Count FlexInt         `json:"count"`
	Item  json.RawMessage `json:"item"`
}

// Item is the subset of item fields the export uses
type Item struct {
	Name        string  `json:"name"`
	Price       FlexInt `json:"price"`
	ReleaseDate RawText `json:"release_date"`
	Thumbnail   string  `json:"thumbnail"`
	Full        string  `json:"full"`
}

// FlexInt decodes an integer sent either as a JSON number or a numeric string.
// Fractions are truncated; empty strings and null decode to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		*f = 0
		return nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cannot decode %s as integer", data)
	}
	*f = FlexInt(int(v))
	return nil
}

// RawText decodes a JSON string as its value and any other JSON value as its
// literal text, so an empty object arrives as "{}".
type RawText string

func (t *RawText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*t = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = RawText(s)
	default:
		*t = RawText(trimmed)
	}
	return nil
}
