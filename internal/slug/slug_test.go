package slug

import "testing"

func TestNewFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s := New()
		if len(s) != Length {
			t.Fatalf("expected length %d, got %q", Length, s)
		}
		if reason := Validate(s); reason != "" {
			t.Fatalf("generated slug %q invalid: %s", s, reason)
		}
		seen[s] = true
	}
	if len(seen) < 90 {
		t.Fatalf("expected mostly unique slugs, got %d distinct of 100", len(seen))
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"simple", "my-shop", true},
		{"digits", "shop123", true},
		{"min length", "abc", true},
		{"empty", "", false},
		{"too short", "ab", false},
		{"too long", "abcdefghijklmnopqrstuvwxyz12345", false},
		{"uppercase", "MyShop", false},
		{"space", "my shop", false},
		{"underscore", "my_shop", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := Validate(tc.in)
			if tc.ok && reason != "" {
				t.Errorf("Validate(%q) = %q, expected valid", tc.in, reason)
			}
			if !tc.ok && reason == "" {
				t.Errorf("Validate(%q) accepted, expected rejection", tc.in)
			}
		})
	}
}
