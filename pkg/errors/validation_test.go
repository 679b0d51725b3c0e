package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateGridUnit(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"default", 20, false},
		{"fractional", 0.5, false},
		{"large", 1e6, false},

		{"zero", 0, true},
		{"negative", -20, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGridUnit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGridUnit(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidArgument) {
				t.Errorf("ValidateGridUnit(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidArgument)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "tree.p3d", false},
		{"nested", "out/maps/l1_tree.p3d", false},
		{"absolute", "/tmp/tree.xml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "tree\x00.p3d", true},
		{"newline", "tree\n.p3d", true},
		{"directory", "out/", true},
		{"windows directory", "out\\", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
