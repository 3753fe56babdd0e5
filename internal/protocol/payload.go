package protocol

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Separator divides the filename from the base64 body of an encoded payload.
// Base64 output may itself contain "////", so decoding splits at the first one
// and filenames are not allowed to contain it.
const Separator = "////"

// Payload is a file as it travels through a transfer
type Payload struct {
	Name string
	Data []byte
}

// ValidateFilename reports whether name can be embedded in an encoded payload.
// A trailing slash would merge into the separator and shift the split point.
// Line breaks are refused because line-oriented scanners split on them.
func ValidateFilename(name string) error {
	switch {
	case strings.Contains(name, Separator):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidFilename, name, Separator)
	case strings.HasSuffix(name, "/"):
		return fmt.Errorf("%w: %q ends with a slash", ErrInvalidFilename, name)
	case strings.Contains(name, Delimiter):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidFilename, name, Delimiter)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidFilename, name)
	}
	return nil
}

// BuildPayload encodes a file into the text form "<name>////<base64(data)>"
func BuildPayload(name string, data []byte) (string, error) {
	if err := ValidateFilename(name); err != nil {
		return "", err
	}
	return name + Separator + base64.StdEncoding.EncodeToString(data), nil
}

// UnbuildPayload reverses BuildPayload
func UnbuildPayload(encoded string) (Payload, error) {
	name, body, found := strings.Cut(encoded, Separator)
	if !found {
		return Payload{}, fmt.Errorf("%w: separator %q not found", ErrCorruptPayload, Separator)
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: failed to decode base64: %v", ErrCorruptPayload, err)
	}

	return Payload{Name: name, Data: data}, nil
}
