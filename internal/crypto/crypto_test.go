package crypto

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("CheckPassword with correct password: %v", err)
	}
	if err := CheckPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("CheckPassword accepted wrong password")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same-input")
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashPassword("same-input")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestHashToken(t *testing.T) {
	first := HashToken("some.jwt.token")
	second := HashToken("some.jwt.token")
	if first != second {
		t.Fatal("token hashing is not deterministic")
	}
	if first == "some.jwt.token" {
		t.Fatal("hash equals input")
	}
	if HashToken("other.jwt.token") == first {
		t.Fatal("distinct tokens hash identically")
	}
}

func TestTokenHashEqual(t *testing.T) {
	hash := HashToken("token-a")
	if !TokenHashEqual(hash, HashToken("token-a")) {
		t.Fatal("equal hashes reported unequal")
	}
	if TokenHashEqual(hash, HashToken("token-b")) {
		t.Fatal("different hashes reported equal")
	}
	if TokenHashEqual(hash, "") {
		t.Fatal("empty hash reported equal")
	}
}
