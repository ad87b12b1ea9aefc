package password

import "testing"

func TestGetHashAndCompare(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "password123"},
		{name: "special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "short password", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			if err != nil {
				t.Fatalf("GetHash() error = %v", err)
			}
			if hash == "" {
				t.Fatal("GetHash() returned empty hash")
			}
			if err := CompareHash(hash, tt.password); err != nil {
				t.Errorf("CompareHash() with original password failed: %v", err)
			}
			if err := CompareHash(hash, "wrong_password"); err == nil {
				t.Error("CompareHash() with wrong password should fail")
			}
		})
	}
}
