package vertexpipe

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"testing"

	"golang.org/x/crypto/blowfish"

	"dcmesh/pkg/checksum"
	"dcmesh/pkg/keyderive"
	"dcmesh/pkg/types"
)

func packVertices(vs [][3]float32) []byte {
	buf := make([]byte, len(vs)*12)
	for i, v := range vs {
		off := i * 12
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v[1]))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v[2]))
	}
	return buf
}

func encryptECB(t *testing.T, key [16]byte, plain []byte) []byte {
	t.Helper()
	block, err := blowfish.NewCipher(key[:])
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	padded := plain
	if rem := len(plain) % 8; rem != 0 {
		padded = make([]byte, len(plain)+(8-rem))
		copy(padded, plain)
	}
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += 8 {
		block.Encrypt(out[i:i+8], padded[i:i+8])
	}
	return out[:len(plain)]
}

func TestDecodePlainSchema(t *testing.T) {
	raw := packVertices([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	blob := base64.RawStdEncoding.EncodeToString(raw)

	meta := types.VerticesMeta{Count: 3, EncodedBytes: uint32(len(blob))}
	res, err := Decode(blob, "plain", nil, meta, types.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Vertices) != 3 {
		t.Fatalf("len(vertices) = %d, want 3", len(res.Vertices))
	}
	if res.Vertices[1].X != 1 {
		t.Fatalf("vertex[1].X = %v, want 1", res.Vertices[1].X)
	}
}

func TestDecodeEncryptedVerifiesWithDerivedKey(t *testing.T) {
	plain := packVertices([][3]float32{{1, 2, 3}, {4, 5, 6}})
	properties := map[string]string{"EKID": "9"}
	keys := keyderive.DeriveCandidates(9, "")

	// Encrypt with candidate[2] ("base with byte0=EKID") so the pipeline
	// must search past candidate 0 to find it.
	encrypted := encryptECB(t, keys[2], plain)
	blob := base64.RawStdEncoding.EncodeToString(encrypted)

	ck := checksum.Swap32(checksum.Compute(plain))
	meta := types.VerticesMeta{Count: 2, CheckValue: &ck}

	res, err := Decode(blob, "CE", properties, meta, types.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !res.Verified {
		t.Fatalf("expected checksum-verified result, diagnostics: %+v", res.Diagnostics)
	}
	if len(res.Vertices) != 2 || res.Vertices[0].X != 1 {
		t.Fatalf("unexpected vertices: %+v", res.Vertices)
	}
}

func TestDecodeShortBufferDiagnostic(t *testing.T) {
	blob := base64.RawStdEncoding.EncodeToString([]byte{1, 2, 3})
	meta := types.VerticesMeta{Count: 10}

	res, err := Decode(blob, "plain", nil, meta, types.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Diagnostics) == 0 || res.Diagnostics[0].Code != types.ShortBuffer {
		t.Fatalf("expected a ShortBuffer diagnostic, got %+v", res.Diagnostics)
	}
}

func TestDecodeChecksumMismatchIsWarningNotFatal(t *testing.T) {
	plain := packVertices([][3]float32{{1, 2, 3}})
	encrypted := encryptECB(t, [16]byte{}, plain) // wrong key entirely
	blob := base64.RawStdEncoding.EncodeToString(encrypted)

	badCheck := uint32(0)
	meta := types.VerticesMeta{Count: 1, CheckValue: &badCheck}

	res, err := Decode(blob, "CE", nil, meta, types.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Verified {
		t.Fatal("expected an unverified result")
	}
	if len(res.Vertices) != 1 {
		t.Fatalf("expected vertices to still be returned, got %+v", res.Vertices)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Code == types.ChecksumMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a ChecksumMismatch diagnostic, got %+v", res.Diagnostics)
	}
}

func TestDecodeChecksumMismatchFatalInStrictMode(t *testing.T) {
	plain := packVertices([][3]float32{{1, 2, 3}})
	encrypted := encryptECB(t, [16]byte{}, plain)
	blob := base64.RawStdEncoding.EncodeToString(encrypted)

	badCheck := uint32(0)
	meta := types.VerticesMeta{Count: 1, CheckValue: &badCheck}

	res, err := Decode(blob, "CE", nil, meta, types.Options{Strict: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Vertices) != 0 {
		t.Fatalf("strict mode should return no vertices on mismatch, got %+v", res.Vertices)
	}
}
