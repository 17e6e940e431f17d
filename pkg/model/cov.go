package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// COV is a registered vehicle referenced by inspections.
type COV struct {
	Number string `json:"number"`
}

// UnmarshalJSON accepts the number as either a JSON string or a JSON number.
func (c *COV) UnmarshalJSON(data []byte) error {
	var raw struct {
		Number json.RawMessage `json:"number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	num := bytes.TrimSpace(raw.Number)
	switch {
	case len(num) == 0 || bytes.Equal(num, []byte("null")):
		c.Number = ""
	case num[0] == '"':
		return json.Unmarshal(num, &c.Number)
	default:
		var n json.Number
		if err := json.Unmarshal(num, &n); err != nil {
			return fmt.Errorf("cov number: %w", err)
		}
		c.Number = n.String()
	}
	return nil
}
