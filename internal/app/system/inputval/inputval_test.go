package inputval

import "testing"

func TestValidate(t *testing.T) {
	type TestInput struct {
		TeamName   string `validate:"required,max=10" label:"Team name"`
		AccessMode string `validate:"omitempty,oneof=public private" label:"Access mode"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:  "valid input",
			input: TestInput{TeamName: "Runners", AccessMode: "public"},
		},
		{
			name:  "empty access mode allowed",
			input: TestInput{TeamName: "Runners"},
		},
		{
			name:       "missing name",
			input:      TestInput{TeamName: ""},
			wantErrors: true,
			wantFirst:  "Team name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{TeamName: "VeryLongTeamNameIndeed"},
			wantErrors: true,
			wantFirst:  "Team name must be at most 10 characters.",
		},
		{
			name:       "bad access mode",
			input:      TestInput{TeamName: "Runners", AccessMode: "secret"},
			wantErrors: true,
			wantFirst:  "Access mode must be one of: public, private.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v (%s)", result.HasErrors(), tt.wantErrors, result.All())
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type CodeInput struct {
		JoinCode string `validate:"required,joincode" label:"Join code"`
	}
	type TimeInput struct {
		WakeUpTime string `validate:"omitempty,hhmm" label:"Wake-up time"`
	}

	t.Run("valid join code", func(t *testing.T) {
		if r := Validate(CodeInput{JoinCode: "ab12"}); r.HasErrors() {
			t.Errorf("unexpected errors: %s", r.All())
		}
	})
	t.Run("invalid join code", func(t *testing.T) {
		r := Validate(CodeInput{JoinCode: "AB-1"})
		if r.First() != "Join code must be 4 letters or digits." {
			t.Errorf("First() = %q", r.First())
		}
	})
	t.Run("valid wake-up time", func(t *testing.T) {
		if r := Validate(TimeInput{WakeUpTime: "06:30"}); r.HasErrors() {
			t.Errorf("unexpected errors: %s", r.All())
		}
	})
	t.Run("invalid wake-up time", func(t *testing.T) {
		if r := Validate(TimeInput{WakeUpTime: "25:00"}); !r.HasErrors() {
			t.Error("expected an error for 25:00")
		}
	})
}

func TestIsValidWakeUpTime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"00:00", true},
		{"06:05", true},
		{"23:59", true},
		{"6:05", false},
		{"24:00", false},
		{"12:60", false},
		{"", false},
		{"06:05:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidWakeUpTime(tt.in); got != tt.want {
				t.Errorf("IsValidWakeUpTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if got := r.All(); got != "Error 1; Error 2" {
		t.Errorf("All() = %q", got)
	}
	if (&Result{}).First() != "" {
		t.Error("First() on empty result should be empty")
	}
}
