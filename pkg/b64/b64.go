// Package b64 decodes the whitespace-tolerant base64 payloads the
// container embeds as element text.
package b64

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Decode strips embedded whitespace (space, tab, CR, LF) from text and
// base64-decodes the remainder. Trailing '=' padding is tolerated either
// way: the stripped text is decoded with RawStdEncoding after trimming
// any padding characters, so inputs with or without padding both work.
//
// It does not materialize more than one intermediate copy of the input.
func Decode(text string) ([]byte, error) {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, text)
	stripped = strings.TrimRight(stripped, "=")

	out, err := base64.RawStdEncoding.DecodeString(stripped)
	if err != nil {
		return nil, fmt.Errorf("b64: decode: %w", err)
	}
	return out, nil
}
