package main

import "testing"

func TestParseIntLiteral(t *testing.T) {
	tests := []struct {
		name  string
		tok   string
		radix int
		want  int64
		ok    bool
	}{
		{"plain decimal", "42", 10, 42, true},
		{"negative decimal", "-7", 10, -7, true},
		{"hex prefix", "0x1F", 10, 31, true},
		{"hex prefix upper", "0X1F", 10, 31, true},
		{"hex suffix", "1FH", 10, 31, true},
		{"binary suffix", "1011B", 10, 11, true},
		{"octal suffix", "17Q", 10, 15, true},
		{"leading zero octal", "017", 10, 15, true},
		{"bare zero", "0", 10, 0, true},
		{"default radix hex", "1F", 16, 31, true},
		{"default radix octal", "17", 8, 15, true},
		{"not a number", "foo", 10, 0, false},
		{"empty", "", 10, 0, false},
		{"ambiguous 0FFH resolves via suffix", "0FFH", 10, 255, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseIntLiteral(tt.tok, tt.radix)
			if ok != tt.ok {
				t.Fatalf("parseIntLiteral(%q) ok = %v, want %v", tt.tok, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseIntLiteral(%q) = %d, want %d", tt.tok, got, tt.want)
			}
		})
	}
}

func TestIsBinaryDigits(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"1010", true},
		{"0", true},
		{"", false},
		{"102", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if got := isBinaryDigits(tt.s); got != tt.want {
			t.Errorf("isBinaryDigits(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestRenderDecimalOperand(t *testing.T) {
	tests := []struct {
		name string
		tok  string
		want string
	}{
		{"hex literal", "0x10", "16"},
		{"octal suffix", "17Q", "15"},
		{"already decimal", "99", "99"},
		{"symbol passthrough", "FOO", "FOO"},
		{"quoted string passthrough", `"hi"`, `"hi"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderDecimalOperand(tt.tok, 10); got != tt.want {
				t.Errorf("renderDecimalOperand(%q) = %q, want %q", tt.tok, got, tt.want)
			}
		})
	}
}
