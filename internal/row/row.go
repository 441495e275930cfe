// Package row implements the (a, b) row codec: the 16-byte payload stored
// in every leaf cell and doubling as that cell's key.
package row

import "encoding/binary"

const (
	// KeySize is the width of column b on disk: 11 printable bytes plus a
	// NUL terminator.
	KeySize = 12
	// MaxBLen is the longest string column b may hold.
	MaxBLen = KeySize - 1

	// ValueSize is the width of column a on disk.
	ValueSize = 4

	// Size is the full row payload: b first, then little-endian a. (The
	// source this system was distilled from disagreed on the order; this
	// is the canonical choice, applied consistently everywhere a row is
	// read or written.)
	Size = KeySize + ValueSize
)

// Key is the on-disk, NUL-padded representation of column b. It is also
// the leaf cell's key, byte for byte.
type Key [KeySize]byte

// EncodeKey NUL-pads s into a fixed-width key. Callers are responsible for
// rejecting strings longer than MaxBLen before calling this; EncodeKey
// silently truncates rather than erroring, since by the time a row
// reaches the tree its length has already been validated.
func EncodeKey(s string) Key {
	var k Key
	copy(k[:], s)
	return k
}

// String returns column b with its NUL padding trimmed.
func (k Key) String() string {
	i := 0
	for i < len(k) && k[i] != 0 {
		i++
	}
	return string(k[:i])
}

// Compare orders two keys the way a byte-wise memcmp of the padded
// buffers would — equivalent to strcmp for the key shapes this system
// accepts, since a shorter string's NUL byte (0x00) sorts below any
// printable byte that could appear at the same offset in a longer one.
func Compare(a, b Key) int {
	for i := 0; i < KeySize; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Row is one table record.
type Row struct {
	A uint32
	B string
}

// Serialize packs r into its 16-byte leaf cell payload.
func Serialize(r Row) [Size]byte {
	var buf [Size]byte
	key := EncodeKey(r.B)
	copy(buf[:KeySize], key[:])
	binary.LittleEndian.PutUint32(buf[KeySize:], r.A)
	return buf
}

// Deserialize is the inverse of Serialize. cell must hold at least Size
// bytes.
func Deserialize(cell []byte) Row {
	var k Key
	copy(k[:], cell[:KeySize])
	a := binary.LittleEndian.Uint32(cell[KeySize : KeySize+ValueSize])
	return Row{A: a, B: k.String()}
}
