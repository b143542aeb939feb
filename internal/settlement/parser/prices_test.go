package parser

import (
	"math"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		wantNil bool
	}{
		{"American negative string", "-150", 1.6667, false},
		{"American positive string", "+200", 3.0, false},
		{"American positive number", float64(150), 2.5, false},
		{"American negative number", float64(-110), 1.9091, false},
		{"Decimal string", "1.85", 1.85, false},
		{"Decimal number", 2.1, 2.1, false},
		{"XML attribute map", map[string]any{"@value": "1.95"}, 1.95, false},
		{"Garbage", "abc", 0, true},
		{"Empty", "", 0, true},
		{"Nil", nil, 0, true},
		{"Zero", "0", 0, true},
		{"Below one", 0.5, 0, true},
		{"Bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDecimal(tt.in)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("ParseDecimal(%v) = %v, want nil", tt.in, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDecimal(%v) = nil, want %v", tt.in, tt.want)
			}
			if math.Abs(*got-tt.want) > 0.00001 {
				t.Errorf("ParseDecimal(%v) = %v, want %v", tt.in, *got, tt.want)
			}
		})
	}
}
