package keys

import "testing"

// TestCanonical exercises key derivation from backslash-separated paths.
func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single segment",
			input: `Motor`,
			want:  "motor",
		},
		{
			name:  "two segments",
			input: `Motor\Drivaxel`,
			want:  "motor-drivaxel",
		},
		{
			name:  "deep path",
			input: `FB 55\Motor\Kolv`,
			want:  "fb 55-motor-kolv",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: `  Motor\Drivaxel  `,
			want:  "motor-drivaxel",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.input); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestParent exercises parent key resolution.
func TestParent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "root has no parent",
			input: `Motor`,
			want:  "",
		},
		{
			name:  "one level up",
			input: `Motor\Drivaxel`,
			want:  "motor",
		},
		{
			name:  "two levels up",
			input: `FB 55\Motor\Kolv`,
			want:  "fb 55-motor",
		},
		{
			name:  "empty segments ignored",
			input: `Motor\\Drivaxel`,
			want:  "motor",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parent(tt.input); got != tt.want {
				t.Errorf("Parent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeFileName covers Swedish letters, their mojibake forms, and
// the character stripping rules.
func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain lowercase",
			input: "pump",
			want:  "pump",
		},
		{
			name:  "uppercase folded",
			input: "Hydraulik Pump",
			want:  "hydraulik_pump",
		},
		{
			name:  "swedish letters folded",
			input: "växellåda för",
			want:  "vaxellada_for",
		},
		{
			name:  "mojibake swedish letters folded",
			input: "vÃ¤xellÃ¥da fÃ¶r",
			want:  "vaxellada_for",
		},
		{
			name:  "whitespace runs collapse to underscore",
			input: "hydraul  pump",
			want:  "hydraul_pump",
		},
		{
			name:  "double hyphen collapsed",
			input: "motor--kolv",
			want:  "motor-kolv",
		},
		{
			name:  "url encoded space",
			input: "motor%20kolv",
			want:  "motor_kolv",
		},
		{
			name:  "comma token removed",
			input: "bult[comma]mutter",
			want:  "bultmutter",
		},
		{
			name:  "disallowed characters stripped",
			input: "pump (ny!) #2",
			want:  "pump_ny_2",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSlugify verifies underscores become hyphens and runs collapse.
func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces become hyphens",
			input: "Hydraulik pump",
			want:  "hydraulik-pump",
		},
		{
			name:  "mixed separators collapse",
			input: "motor _ kolv",
			want:  "motor-kolv",
		},
		{
			name:  "swedish letters folded",
			input: "Växellåda",
			want:  "vaxellada",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestPosLabel verifies the drawing position suffix rule.
func TestPosLabel(t *testing.T) {
	tests := []struct {
		name     string
		position string
		partName string
		want     string
	}{
		{
			name:     "plain position",
			position: "12",
			partName: "Kolv",
			want:     "12",
		},
		{
			name:     "letter prefix appended",
			position: "12",
			partName: "A Kolvring",
			want:     "12A",
		},
		{
			name:     "lowercase letter prefix uppercased",
			position: "3",
			partName: "b Bult",
			want:     "3B",
		},
		{
			name:     "digit prefix ignored",
			position: "7",
			partName: "2 mm bricka",
			want:     "7",
		},
		{
			name:     "empty position defaults to zero",
			position: "",
			partName: "Kolv",
			want:     "0",
		},
		{
			name:     "short name",
			position: "5",
			partName: "A",
			want:     "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PosLabel(tt.position, tt.partName); got != tt.want {
				t.Errorf("PosLabel(%q, %q) = %q, want %q", tt.position, tt.partName, got, tt.want)
			}
		})
	}
}
