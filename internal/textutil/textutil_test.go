package textutil

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Date_of-Birth ", "date of birth"},
		{"Ear.Tag  No", "ear tag no"},
		{"Çolour", "colour"},
		{"Identificación", "identificacion"},
		{"", ""},
		{"\t", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Fatalf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	t.Parallel()

	got := Words("Boer goat / Kid (weaned)")
	want := []string{"boer", "goat", "kid", "weaned"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Words = %#v, want %#v", got, want)
	}
	if got := Words("   "); len(got) != 0 {
		t.Fatalf("Words(blank) = %#v", got)
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"llama", "Llama"},
		{"  water   buffalo ", "Water Buffalo"},
		{"ALPACA", "Alpaca"},
		{"Llama", "Llama"},
	}
	for _, tt := range tests {
		if got := Title(tt.in); got != tt.want {
			t.Fatalf("Title(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
