package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/liftkit/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "")
	v.Required("other", "   ")
	v.Required("ok", "value")
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
	if v.Errors()[0].Field != "name" {
		t.Errorf("expected field 'name', got %q", v.Errors()[0].Field)
	}
}

func TestValidatorOptionalUUID(t *testing.T) {
	v := New()
	v.OptionalUUID("run_id", "")
	v.OptionalUUID("run_id", "550e8400-e29b-41d4-a716-446655440000")
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}
	v.OptionalUUID("run_id", "not-a-uuid")
	if !v.HasErrors() {
		t.Error("expected error for invalid UUID")
	}
}

func TestValidatorNumbers(t *testing.T) {
	tests := []struct {
		name    string
		check   func(v *Validator)
		wantErr bool
	}{
		{"positive ok", func(v *Validator) { v.Positive("vhmax", 0.5) }, false},
		{"positive zero", func(v *Validator) { v.Positive("vhmax", 0) }, true},
		{"non-negative zero", func(v *Validator) { v.NonNegative("vhcs", 0) }, false},
		{"non-negative below", func(v *Validator) { v.NonNegative("vhcs", -1) }, true},
		{"range inside", func(v *Validator) { v.Range("sample_rate", 0.5, 0, 1) }, false},
		{"range outside", func(v *Validator) { v.Range("sample_rate", 1.5, 0, 1) }, true},
		{"duration ok", func(v *Validator) { v.PositiveDuration("poll", time.Millisecond) }, false},
		{"duration zero", func(v *Validator) { v.PositiveDuration("poll", 0) }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New()
			tc.check(v)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("HasErrors() = %v, want %v (%v)", v.HasErrors(), tc.wantErr, v.Errors())
			}
		})
	}
}

func TestValidatorOneOfAndCustom(t *testing.T) {
	v := New()
	v.OneOf("mode", "canned", []string{"canned", "script"})
	v.Custom(true, "x", "never")
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}
	v.OneOf("mode", "human", []string{"canned", "script"})
	v.Custom(false, "script_path", "is required in script mode")
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Fatalf("expected nil for empty validator, got %v", err)
	}
	v := New().Required("a", "").Positive("b", -1)
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "a: is required") || !strings.Contains(appErr.Message, "b: must be greater than 0") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

type bearing struct {
	Name          string  `json:"name" validate:"required"`
	OuterDiameter float64 `json:"outer_diameter" validate:"gt=0"`
}

type dataSet struct {
	Title    string    `json:"title" validate:"required"`
	Bearings []bearing `json:"bearings" validate:"min=1,dive"`
}

func TestStructValidateValid(t *testing.T) {
	d := dataSet{Title: "set", Bearings: []bearing{{Name: "8206", OuterDiameter: 52}}}
	if err := Validate(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructValidateNested(t *testing.T) {
	d := dataSet{Title: "set", Bearings: []bearing{{Name: "8206", OuterDiameter: 0}}}
	err := Validate(d)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "bearings[0].outer_diameter: must be greater than 0") {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestStructValidateEmptySlice(t *testing.T) {
	err := Validate(dataSet{Title: "set"})
	if err == nil || !strings.Contains(err.Error(), "bearings: must have at least 1 items") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestStructValidateNonStruct(t *testing.T) {
	if err := Validate(42); err == nil {
		t.Fatal("expected error for non-struct input")
	}
}

func TestValidateUUIDFunc(t *testing.T) {
	id, err := ValidateUUID("run_id", "550e8400-e29b-41d4-a716-446655440000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("unexpected id %s", id)
	}
	if _, err := ValidateUUID("run_id", ""); !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
	if _, err := ValidateUUID("run_id", "nope"); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("OuterDiameter"); got != "outer_diameter" {
		t.Errorf("expected outer_diameter, got %s", got)
	}
}
