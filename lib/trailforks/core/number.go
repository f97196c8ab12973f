package core

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number is an api value that may arrive either as a json number or as a
// numeric string ("12", "1662249831.5"). An absent or null value is "",
// other json literals are kept as written.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		err := json.Unmarshal(b, &s)
		if err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	var num json.Number
	err := json.Unmarshal(b, &num)
	if err != nil {
		// booleans and the like are kept verbatim
		*n = Number(b)
		return nil
	}
	*n = Number(num.String())
	return nil
}

func (n Number) String() string {
	return string(n)
}

// Int64 parses the value, fractional values are truncated and anything
// unparsable is 0.
func (n Number) Int64() int64 {
	i, err := strconv.ParseInt(string(n), 10, 64)
	if err == nil {
		return i
	}
	return int64(n.Float64())
}

func (n Number) Float64() float64 {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0
	}
	return f
}
