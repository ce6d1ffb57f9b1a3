package messages

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptBlob indicates a stored blob that cannot be decoded into database bytes.
var ErrCorruptBlob = errors.New("messages: corrupt database blob")

// EncodeBlob renders raw database bytes as a JSON array of byte values,
// the layout browser clients read and write under StorageKey.
func EncodeBlob(raw []byte) ([]byte, error) {
	values := make([]uint16, len(raw))
	for index, b := range raw {
		values[index] = uint16(b)
	}
	return json.Marshal(values)
}

// DecodeBlob parses a JSON array of byte values back into database bytes.
func DecodeBlob(blob []byte) ([]byte, error) {
	var values []int
	if err := json.Unmarshal(blob, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorruptBlob)
	}
	raw := make([]byte, len(values))
	for index, value := range values {
		if value < 0 || value > 255 {
			return nil, fmt.Errorf("%w: value %d at offset %d out of byte range", ErrCorruptBlob, value, index)
		}
		raw[index] = byte(value)
	}
	return raw, nil
}
