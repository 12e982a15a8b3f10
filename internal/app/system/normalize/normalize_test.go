package normalize

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Runners", "Runners"},
		{"  Early   Birds  ", "Early Birds"},
		{"", ""},
		{"   ", ""},
		{"UPPER case", "UPPER case"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNameLength(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"ab", 2},
		{"팀원", 2},
		{"a", 1},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NameLength(tt.input); got != tt.want {
				t.Errorf("NameLength(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ab12", "AB12"},
		{"  Ab12 ", "AB12"},
		{"AB12", "AB12"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := JoinCode(tt.input); got != tt.want {
				t.Errorf("JoinCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAccessMode(t *testing.T) {
	if got := AccessMode(" Private "); got != "private" {
		t.Errorf("AccessMode = %q", got)
	}
}
