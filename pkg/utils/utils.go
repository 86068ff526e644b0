// Package utils holds small byte-level helpers for the CLI's debug
// output.
package utils

import (
	"encoding/hex"
	"fmt"
)

// HexPreview renders the first n bytes of data as hex, with an ellipsis
// marker if data is longer, for compact diagnostic/log output.
func HexPreview(data []byte, n int) string {
	if n <= 0 || n > len(data) {
		n = len(data)
	}
	preview := hex.EncodeToString(data[:n])
	if n < len(data) {
		return fmt.Sprintf("%s… (%d bytes total)", preview, len(data))
	}
	return preview
}
