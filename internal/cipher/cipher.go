// Package cipher implements the additive byte cipher used to obscure block
// and message bodies at rest. This is obfuscation, not cryptographic
// confidentiality: there is no key derivation, no IV and no authentication,
// and the key space is a single integer. Do not rely on it to protect data
// from anyone with access to the files.
package cipher

// Encode shifts every byte of text up by key, wrapping modulo 256.
// Any int key is valid; negative and oversized keys wrap naturally.
func Encode(text string, key int) string {
	k := byte(key)
	b := []byte(text)
	for i := range b {
		b[i] += k
	}
	return string(b)
}

// Decode reverses Encode with the same key.
func Decode(text string, key int) string {
	k := byte(key)
	b := []byte(text)
	for i := range b {
		b[i] -= k
	}
	return string(b)
}
