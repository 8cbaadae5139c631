package textnorm

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"Crème Brûlée", "creme brulee"},
		{"Müller", "muller"},
		{"ÉLODIE", "elodie"},
		{"São Paulo", "sao paulo"},
		{"already plain", "already plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldIsIdempotent(t *testing.T) {
	in := "Čapek Žofie"
	once := Fold(in)
	if twice := Fold(once); twice != once {
		t.Errorf("Fold(Fold(%q)) = %q, want %q", in, twice, once)
	}
}
