package auth

import "testing"

func TestNewResetKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		key, err := NewResetKey()
		if err != nil {
			t.Fatalf("NewResetKey() error = %v", err)
		}
		if len(key) != ResetKeyLength {
			t.Fatalf("len(key) = %d, want %d", len(key), ResetKeyLength)
		}
		for _, r := range key {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			default:
				t.Fatalf("key %q contains non-alphanumeric %q", key, r)
			}
		}
		if seen[key] {
			t.Fatalf("key %q generated twice", key)
		}
		seen[key] = true
	}
}
