package alerts

import "testing"

func TestSignHMAC(t *testing.T) {
	got := SignHMAC("secret", "METHOD\n/path\n1700000000\nnonce\nbodyhash")
	if len(got) != 64 { // hex-encoded sha256 length
		t.Fatalf("bad length: %s", got)
	}
}

func TestSignHMAC_Deterministic(t *testing.T) {
	a := SignHMAC("secret", "canonical")
	b := SignHMAC("secret", "canonical")
	if a != b {
		t.Fatalf("signatures differ: %s vs %s", a, b)
	}
	if SignHMAC("other", "canonical") == a {
		t.Fatalf("different secret should change signature")
	}
}
