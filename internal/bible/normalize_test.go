package bible

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain korean unchanged", "마태복음 10:5", "마태복음 10:5"},
		{"non breaking space", "마태복음 10:5", "마태복음 10:5"},
		{"fullwidth digits folded", "마태복음 １０:５", "마태복음 10:5"},
		{"line breaks preserved", "약5:15 기도\n눅10:3 보내노라", "약5:15 기도\n눅10:3 보내노라"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces removed", "요 3:16", "요3:16"},
		{"case folded", "Matthew 10:5", "matthew10:5"},
		{"newlines removed", "믿음의\n기도", "믿음의기도"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compact(tt.input); got != tt.want {
				t.Errorf("Compact(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
