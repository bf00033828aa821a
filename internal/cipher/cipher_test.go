package cipher

import "testing"

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"orbit plan alpha",
		"Telemetry: ALL NOMINAL 0123456789",
		"\x00\x01\xfe\xff",
	}
	keys := []int{0, 1, 42, 255, 256, 257, -1, -42, -1000, 1 << 20}

	for _, text := range texts {
		for _, key := range keys {
			got := Decode(Encode(text, key), key)
			if got != text {
				t.Errorf("round trip failed for key %d: got %q, want %q", key, got, text)
			}
		}
	}
}

func TestEncodeWrapsAroundByteBoundary(t *testing.T) {
	// 0xff + 2 must wrap to 0x01, not clamp or fail.
	got := Encode("\xff", 2)
	if got != "\x01" {
		t.Errorf("Encode(0xff, 2) = %x, want 01", got)
	}
}

func TestNegativeKeyEquivalentToModularKey(t *testing.T) {
	// -1 and 255 are the same shift modulo 256.
	a := Encode("warroom", -1)
	b := Encode("warroom", 255)
	if a != b {
		t.Errorf("Encode with -1 = %x, with 255 = %x; want equal", a, b)
	}
}

func TestEncodeChangesContent(t *testing.T) {
	if Encode("secret", 7) == "secret" {
		t.Error("Encode with nonzero key should alter the text")
	}
}
