package session

import (
	"errors"
	"testing"
)

func TestDecodeRejectsTruncatedBlobs(t *testing.T) {
	ident := &CachedIdentity{UserID: "u1", Email: "a@example.com", Role: "admin", Active: true}
	data, err := Encode(ident)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	for i := 0; i < len(data); i++ {
		if _, err := Decode(data[:i]); !errors.Is(err, ErrCorruptEntry) {
			t.Fatalf("truncation at %d not rejected: %v", i, err)
		}
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data, err := Encode(&CachedIdentity{UserID: "u1", Active: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := Decode(append(data, 0xFF)); !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("trailing bytes not rejected: %v", err)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data, err := Encode(&CachedIdentity{UserID: "u1", Active: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data[0] = 0x7F

	if _, err := Decode(data); !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("unknown version not rejected: %v", err)
	}
}

func TestDecodeRejectsEmptyUserID(t *testing.T) {
	data, err := Encode(&CachedIdentity{UserID: "", Active: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := Decode(data); !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("empty user id not rejected: %v", err)
	}
}

func TestEncodeRejectsOversizedField(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := Encode(&CachedIdentity{UserID: string(long)}); err == nil {
		t.Fatal("expected oversized field rejection")
	}
}
