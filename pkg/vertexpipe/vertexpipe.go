// Package vertexpipe implements the encrypted vertex pipeline (C5):
// base64 decode, optional Blowfish decrypt with candidate key search,
// truncation to the expected size, Adler-32 verification, and
// little-endian float reinterpretation.
package vertexpipe

import (
	"encoding/binary"
	"fmt"
	"math"

	"dcmesh/pkg/b64"
	"dcmesh/pkg/checksum"
	"dcmesh/pkg/cipher"
	"dcmesh/pkg/keyderive"
	"dcmesh/pkg/types"
)

const encryptedSchema = "CE"
const bytesPerVertex = 12 // 3 * float32

// Result is the outcome of decoding one vertices blob.
type Result struct {
	Vertices    []types.Vertex
	Verified    bool
	Diagnostics []types.Diagnostic
}

// Decode runs the full C5 pipeline for one <Vertices> blob.
func Decode(blob string, schema string, properties map[string]string, meta types.VerticesMeta, opts types.Options) (Result, error) {
	var res Result

	raw, err := b64.Decode(blob)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
			Code:    types.Base64Error,
			Message: fmt.Sprintf("vertices: %v", err),
		})
		return res, nil
	}

	plain := raw
	verified := true
	if schema == encryptedSchema {
		plain, verified, err = decryptWithCandidates(raw, properties, meta, opts)
		if err != nil {
			return res, err
		}
	}

	expected := int(meta.Count) * bytesPerVertex
	if len(plain) < expected {
		res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
			Code:    types.ShortBuffer,
			Message: fmt.Sprintf("vertices: decrypted buffer is %d bytes, need %d", len(plain), expected),
		})
		return res, nil
	}
	plain = plain[:expected]

	if schema == encryptedSchema && meta.CheckValue != nil {
		if !checksum.Verify(plain, *meta.CheckValue) {
			verified = false
			if opts.Strict {
				res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
					Code:    types.ChecksumMismatch,
					Message: "vertices: adler-32 checksum mismatch (strict mode)",
				})
				return res, nil
			}
			res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
				Code:    types.ChecksumMismatch,
				Message: "vertices: adler-32 checksum mismatch, decryption key may be wrong",
			})
		}
	}

	res.Vertices = make([]types.Vertex, meta.Count)
	for i := range res.Vertices {
		off := i * bytesPerVertex
		res.Vertices[i] = types.Vertex{
			X: math.Float32frombits(binary.LittleEndian.Uint32(plain[off : off+4])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(plain[off+4 : off+8])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(plain[off+8 : off+12])),
		}
	}
	res.Verified = verified
	return res, nil
}

// decryptWithCandidates tries each derived key in turn, preferring the
// first that verifies against the document's checksum; if none verify
// (or there is no check value to test against), the first candidate's
// plaintext is returned unverified.
func decryptWithCandidates(raw []byte, properties map[string]string, meta types.VerticesMeta, opts types.Options) ([]byte, bool, error) {
	ekid := keyderive.ParseEKID(properties["EKID"])
	candidates := keyderive.DeriveCandidates(ekid, properties["PackageLockList"])

	var firstPlain []byte
	for i, key := range candidates {
		plain, err := cipher.Decrypt(raw, key, opts.Swap64)
		if err != nil {
			return nil, false, fmt.Errorf("vertexpipe: decrypt candidate %d: %w", i, err)
		}
		if i == 0 {
			firstPlain = plain
		}
		if meta.CheckValue == nil {
			continue
		}
		truncated := plain
		if expected := int(meta.Count) * bytesPerVertex; len(truncated) > expected {
			truncated = truncated[:expected]
		}
		if checksum.Verify(truncated, *meta.CheckValue) {
			return plain, true, nil
		}
	}
	return firstPlain, false, nil
}
