// Package encoding provides text and path utilities for World of Warcraft asset files.
package encoding

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrInvalidText is returned when a byte run is not valid UTF-8.
var ErrInvalidText = encoding.ErrInvalidUTF8

// DecodeString decodes raw bytes as UTF-8.
// On a decode fault it returns the valid prefix together with ErrInvalidText.
func DecodeString(raw []byte) (string, error) {
	result, _, err := transform.Bytes(encoding.UTF8Validator, raw)
	if err != nil {
		return string(result), ErrInvalidText
	}
	return string(result), nil
}

// BestEffortString decodes raw bytes, returning the partial string on a decode fault.
func BestEffortString(raw []byte) string {
	s, _ := DecodeString(raw)
	return s
}
