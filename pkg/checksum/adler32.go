// Package checksum implements the Adler-32 integrity check the document
// uses to verify a decryption key, including its byte-reversed compare
// convention.
package checksum

import (
	"hash/adler32"
	"math/bits"
)

// Compute returns the standard Adler-32 checksum of data.
func Compute(data []byte) uint32 {
	return adler32.Checksum(data)
}

// Swap32 reverses the four bytes of x. It is its own inverse.
func Swap32(x uint32) uint32 {
	return bits.ReverseBytes32(x)
}

// Verify reports whether the byte-swapped Adler-32 of data matches
// checkValue, per the document's check_value convention.
func Verify(data []byte, checkValue uint32) bool {
	return Swap32(Compute(data)) == checkValue
}
