package jsonx

import (
	"bytes"
	"encoding/json"
)

// Marshal encodes v without HTML escaping: "<", ">" and "&" stay literal.
// There is no trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
