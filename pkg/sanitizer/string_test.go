package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Casa do Mar  ",
			want:  "Casa do Mar",
		},
		{
			name:  "multiple spaces between words",
			input: "Casa    do Mar",
			want:  "Casa do Mar",
		},
		{
			name:  "tabs and newlines",
			input: "Casa\t\ndo Mar",
			want:  "Casa do Mar",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Spa™ ",
			want:  "Café & Spa™",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameOrAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces become underscores",
			input: "Rua das Flores 12",
			want:  "rua_das_flores_12",
		},
		{
			name:  "collapse repeated separators",
			input: "Casa -- do   Mar",
			want:  "casa_do_mar",
		},
		{
			name:  "strips leading and trailing separators",
			input: "  -Casa do Mar- ",
			want:  "casa_do_mar",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNameOrAddress(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeNameOrAddress(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "digits dropped from labels",
			input: "Family Trip 2025",
			want:  "family_trip",
		},
		{
			name:  "already normalized",
			input: "summer",
			want:  "summer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeLabel(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClampGuestCount(t *testing.T) {
	if got := ClampGuestCount(0); got != MinGuestCount {
		t.Errorf("ClampGuestCount(0) = %d, want %d", got, MinGuestCount)
	}
	if got := ClampGuestCount(500); got != MaxGuestCount {
		t.Errorf("ClampGuestCount(500) = %d, want %d", got, MaxGuestCount)
	}
	if got := ClampGuestCount(4); got != 4 {
		t.Errorf("ClampGuestCount(4) = %d, want 4", got)
	}
}
