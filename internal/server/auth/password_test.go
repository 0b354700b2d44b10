package auth

import "testing"

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{Cost: 4} // minimal cost to keep the test fast

	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "pw1" {
		t.Fatalf("hash must not equal the plain password")
	}

	if !h.Verify(hash, "pw1") {
		t.Fatalf("Verify should succeed for the original password")
	}
	if h.Verify(hash, "pw2") {
		t.Fatalf("Verify should fail for a different password")
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{}
	hash, err := h.Hash("x")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !h.Verify(hash, "x") {
		t.Fatalf("Verify should succeed with default cost")
	}
}
