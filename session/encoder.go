package session

import (
	"bytes"
	"errors"
	"io"
)

const identityFormatVersionV1 = 1

// ErrCorruptEntry is returned by Decode for blobs that do not parse as any
// known format version. Callers treat a corrupt entry as a cache miss.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Encode serializes a [CachedIdentity] into the compact binary blob stored
// in Redis: version byte, length-prefixed user id / email / role, active byte.
func Encode(ident *CachedIdentity) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(identityFormatVersionV1)

	for _, field := range []string{ident.UserID, ident.Email, ident.Role} {
		if len(field) > 255 {
			return nil, errors.New("identity field too long")
		}
		buf.WriteByte(byte(len(field)))
		buf.WriteString(field)
	}

	if ident.Active {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode].
func Decode(data []byte) (*CachedIdentity, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != identityFormatVersionV1 {
		return nil, ErrCorruptEntry
	}

	fields := make([]string, 3)
	for i := range fields {
		length, err := reader.ReadByte()
		if err != nil {
			return nil, ErrCorruptEntry
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, ErrCorruptEntry
		}
		fields[i] = string(raw)
	}

	active, err := reader.ReadByte()
	if err != nil || reader.Len() != 0 {
		return nil, ErrCorruptEntry
	}

	ident := &CachedIdentity{
		UserID: fields[0],
		Email:  fields[1],
		Role:   fields[2],
		Active: active == 1,
	}
	if ident.UserID == "" {
		return nil, ErrCorruptEntry
	}

	return ident, nil
}
