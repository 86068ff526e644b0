// Package keyderive produces the ordered list of candidate Blowfish keys
// the vertex pipeline tries in turn, derived from a document's EKID and
// PackageLockList properties.
package keyderive

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// baseKey is the reference key, ASCII "0123456789abcdef".
var baseKey = [16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', 'a', 'b', 'c', 'd', 'e', 'f',
}

// historicalKeys are the two literal fixed keys carried for backward
// compatibility with older encoders; see DESIGN.md for why only these
// two (and not the wider ad hoc discovery list) are retained.
var historicalKeys = [][16]byte{
	{0x31, 0x30, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66},
	{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
}

// CanonicalPackageLockHash canonicalizes a PackageLockList value (split
// on ';', drop empties, dedupe, sort lexicographically, rejoin with
// trailing ';' separators) and returns its MD5 digest as uppercase hex.
// An empty or absent list yields "".
func CanonicalPackageLockHash(packageLockList string) string {
	if packageLockList == "" {
		return ""
	}

	seen := make(map[string]struct{})
	var items []string
	for _, item := range strings.Split(packageLockList, ";") {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}
	if len(items) == 0 {
		return ""
	}
	sort.Strings(items)

	var canonical strings.Builder
	for _, item := range items {
		canonical.WriteString(item)
		canonical.WriteByte(';')
	}

	digest := md5.Sum([]byte(canonical.String()))
	return strings.ToUpper(fmt.Sprintf("%x", digest))
}

// DeriveCandidates produces the ordered list of 16-byte candidate keys
// for the given EKID and raw PackageLockList property value.
func DeriveCandidates(ekid uint32, packageLockList string) [][16]byte {
	hash := CanonicalPackageLockHash(packageLockList)

	candidates := make([][16]byte, 0, 7)

	// 1. Base key.
	candidates = append(candidates, baseKey)

	// 2. base XOR (EKID ^ (i mod 256)) per byte.
	var k2 [16]byte
	for i := range k2 {
		k2[i] = baseKey[i] ^ byte(ekid^uint32(i%256))
	}
	candidates = append(candidates, k2)

	// 3. base with byte 0 replaced by EKID & 0xFF.
	k3 := baseKey
	k3[0] = byte(ekid)
	candidates = append(candidates, k3)

	if hash != "" {
		// 4. base XOR with the PackageLockList hash's ASCII bytes, repeating.
		var k4 [16]byte
		for i := range k4 {
			k4[i] = baseKey[i] ^ hash[i%len(hash)]
		}
		candidates = append(candidates, k4)

		// 5. combination of (2) and (4).
		var k5 [16]byte
		for i := range k5 {
			hashByte := hash[i%len(hash)]
			ekidByte := byte(ekid ^ uint32(i%256))
			k5[i] = baseKey[i] ^ (hashByte ^ ekidByte)
		}
		candidates = append(candidates, k5)
	}

	candidates = append(candidates, historicalKeys...)

	return candidates
}

// ParseEKID parses a document's EKID property, defaulting to 1 when
// absent or unparsable.
func ParseEKID(raw string) uint32 {
	if raw == "" {
		return 1
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 1
	}
	return uint32(v)
}
