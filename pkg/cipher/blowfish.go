// Package cipher implements the container's Blowfish-ECB block cipher:
// 8-byte blocks, a 16-byte key, zero-padding for partial trailing
// blocks, and the legacy swap64 byte-order variant.
package cipher

import (
	"fmt"

	"golang.org/x/crypto/blowfish"
)

const blockSize = 8

// ReferenceKey is the document schema's default 16-byte key, ASCII
// "0123456789abcdef".
var ReferenceKey = [16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', 'a', 'b', 'c', 'd', 'e', 'f',
}

// Decrypt runs Blowfish in ECB mode over data using key, returning
// plaintext truncated back to len(data). If len(data) is not a multiple
// of 8, data is zero-padded to the next multiple of 8 before decryption
// and the padding is dropped afterward.
//
// When swap64 is true, each 8-byte block has its two 32-bit halves
// byte-reversed before decryption and the same swap is reapplied to the
// resulting plaintext block (the legacy byte-layout variant).
func Decrypt(data []byte, key [16]byte, swap64 bool) ([]byte, error) {
	block, err := blowfish.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("cipher: new blowfish cipher: %w", err)
	}

	originalLen := len(data)
	padded := data
	if rem := len(data) % blockSize; rem != 0 {
		padded = make([]byte, len(data)+(blockSize-rem))
		copy(padded, data)
	}

	out := make([]byte, len(padded))
	buf := make([]byte, blockSize)
	for i := 0; i < len(padded); i += blockSize {
		copy(buf, padded[i:i+blockSize])
		if swap64 {
			swapBlock(buf)
		}
		block.Decrypt(buf, buf)
		if swap64 {
			swapBlock(buf)
		}
		copy(out[i:i+blockSize], buf)
	}

	return out[:originalLen], nil
}

// swapBlock reverses each 32-bit half of an 8-byte block in place:
// [b0 b1 b2 b3 b4 b5 b6 b7] -> [b3 b2 b1 b0 b7 b6 b5 b4].
func swapBlock(b []byte) {
	b[0], b[3] = b[3], b[0]
	b[1], b[2] = b[2], b[1]
	b[4], b[7] = b[7], b[4]
	b[5], b[6] = b[6], b[5]
}
