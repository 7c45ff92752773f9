package auth

import "testing"

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		want     int
	}{
		{"", 0},
		{"aaaa", 1},
		{"abc123", 2},
		{"Abc12345", 4},
		{"Aa3232107@", 5},
	}
	for _, tc := range cases {
		if got := PasswordStrength(tc.password); got != tc.want {
			t.Fatalf("PasswordStrength(%q) = %d, want %d", tc.password, got, tc.want)
		}
	}
}

func TestValidatePasswordRejectsWeak(t *testing.T) {
	if err := ValidatePassword("abc123"); err != ErrWeakPassword {
		t.Fatalf("ValidatePassword(weak) = %v, want ErrWeakPassword", err)
	}
	if err := ValidatePassword("Secret99"); err != nil {
		t.Fatalf("ValidatePassword(strong) = %v, want nil", err)
	}
}
