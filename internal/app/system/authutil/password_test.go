package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "correct-horse-battery", nil},
		{"minimum length", "abcdefgh", nil},
		{"too short", "abc", ErrPasswordTooShort},
		{"empty", "", ErrPasswordTooShort},
		{"too long", strings.Repeat("a", MaxPasswordLength+1), ErrPasswordTooLong},
		{"max length", strings.Repeat("a", MaxPasswordLength), nil},
		{"common", "password", ErrPasswordCommon},
		{"common mixed case", "PassWord1", ErrPasswordCommon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.password); err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cure-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cure-pass" {
		t.Fatal("HashPassword() returned the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash = %q, want bcrypt prefix", hash)
	}
	if !CheckPassword("s3cure-pass", hash) {
		t.Error("CheckPassword() = false for correct password")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Error("CheckPassword() = true for wrong password")
	}
	if CheckPassword("s3cure-pass", "not-a-hash") {
		t.Error("CheckPassword() = true for malformed hash")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, _ := HashPassword("same-password")
	b, _ := HashPassword("same-password")
	if a == b {
		t.Error("two hashes of the same password are identical; expected distinct salts")
	}
}

func TestBurnCompare(t *testing.T) {
	// Must not panic and must be callable repeatedly.
	BurnCompare("anything")
	BurnCompare("")
}
