package messages

import (
	"errors"
	"testing"
)

func TestEncodeBlobWritesByteArray(t *testing.T) {
	blob, err := EncodeBlob([]byte{0x53, 0x51, 0x00, 0xff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(blob) != "[83,81,0,255]" {
		t.Fatalf("unexpected blob %s", blob)
	}
}

func TestDecodeBlobRoundTrip(t *testing.T) {
	raw := []byte("SQLite format 3\x00")
	blob, err := EncodeBlob(raw)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeBlob(blob)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Fatalf("expected %q, got %q", raw, decoded)
	}
}

func TestDecodeBlobRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"not-json":     `{"a":1}`,
		"base64":       `"U1FMaXRl"`,
		"out-of-range": `[12,256]`,
		"negative":     `[-1]`,
		"empty":        `[]`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeBlob([]byte(input)); !errors.Is(err, ErrCorruptBlob) {
				t.Fatalf("expected ErrCorruptBlob, got %v", err)
			}
		})
	}
}

func TestParseOrdering(t *testing.T) {
	if ordering, err := ParseOrdering(""); err != nil || ordering != OrderingInsertion {
		t.Fatalf("expected insertion default, got %q err=%v", ordering, err)
	}
	if ordering, err := ParseOrdering(" TIMESTAMP "); err != nil || ordering != OrderingTimestamp {
		t.Fatalf("expected timestamp ordering, got %q err=%v", ordering, err)
	}
	if _, err := ParseOrdering("newest"); !errors.Is(err, ErrInvalidOrdering) {
		t.Fatalf("expected ErrInvalidOrdering, got %v", err)
	}
}
