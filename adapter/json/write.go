package json

import "encoding/json"

// Write serializes any wire value with two-space indentation and a
// trailing newline, the shape the CLI and benchmark outputs use.
func Write(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
