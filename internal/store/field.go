package store

import "bytes"

// SetField copies s into the fixed-capacity field dst, truncating at
// capacity-1 bytes and padding the remainder with NULs. The final byte is
// always NUL so a field can never be stored at its full declared capacity.
func SetField(dst []byte, s string) {
	n := copy(dst, s)
	if n >= len(dst) {
		n = len(dst) - 1
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// FieldString returns the contents of a fixed-capacity field up to the
// first NUL byte.
func FieldString(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return string(src[:i])
	}
	return string(src)
}

// Fits reports whether s fits in a field of the given capacity with room
// for the NUL terminator.
func Fits(s string, capacity int) bool {
	return len(s) < capacity
}
