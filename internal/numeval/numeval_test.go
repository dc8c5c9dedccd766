package numeval

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1+1", 2},
		{"20 - (3*2+2*3)", 8},
		{"2 * (3 + 4)", 14},
		{"10 / 4", 2.5},
		{"-5 + 3", -2},
		{"-(2+3) * 2", -10},
		{"1.5 * 2", 3},
		{"((1))", 1},
		{"100 - 10 - 10", 80},
		{"12 / 3 / 2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.expr, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"whitespace-only", "   "},
		{"variable", "3x + 1"},
		{"symbolic", "x + y"},
		{"dangling-operator", "2 +"},
		{"unbalanced-paren", "(2 + 3"},
		{"division-by-zero", "1 / 0"},
		{"letters", "twenty minus six"},
		{"trailing-garbage", "2 + 2 apples"},
		{"double-dot", "1..2 + 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Evaluate(tt.expr); err == nil {
				t.Errorf("Evaluate(%q): expected error, got none", tt.expr)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{14, "14"},
		{-3, "-3"},
		{2.5, "2.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.v); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
