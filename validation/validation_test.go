package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/simpleioc/errors"
)

type endpoint struct {
	Address string `mapstructure:"address" validate:"required,hostname_port"`
	Retries int    `mapstructure:"retries" validate:"gte=0,lte=5"`
}

type settings struct {
	Name     string   `mapstructure:"name" validate:"required,min=2"`
	Level    string   `mapstructure:"level" validate:"omitempty,oneof=debug info"`
	Endpoint endpoint `mapstructure:"endpoint"`
}

type base struct {
	Name string `mapstructure:"name" validate:"required"`
}

type extended struct {
	base  `mapstructure:",squash"`
	Extra string `mapstructure:"extra" validate:"required"`
}

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "")
	if !v.HasErrors() {
		t.Error("expected error for empty string")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only string")
	}

	v3 := New()
	v3.Required("name", "alice")
	if v3.HasErrors() {
		t.Error("expected no error for non-empty string")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"json", "console"}

	v := New()
	v.OneOf("format", "yaml", allowed)
	if !v.HasErrors() {
		t.Error("expected error for value not in allowed list")
	}
	if !strings.Contains(v.Errors()[0].Message, "json, console") {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}

	v2 := New()
	v2.OneOf("format", "", allowed)
	if v2.HasErrors() {
		t.Error("expected empty value to be skipped")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(false, "endpoint", "is required when tracing is on")
	v.Custom(true, "other", "never reported")
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "endpoint" {
		t.Errorf("unexpected errors: %v", v.Errors())
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	if v.Validate() != nil {
		t.Error("expected nil for no errors")
	}

	v.AddError("a", "is bad")
	v.AddError("b", "is worse")
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if appErr.Message != "a: is bad; b: is worse" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New().
		Required("name", "").
		OneOf("level", "loud", []string{"debug"}).
		Custom(false, "x", "is wrong")
	if len(v.Errors()) != 3 {
		t.Errorf("expected 3 errors, got %d", len(v.Errors()))
	}
}

func TestValidatorMerge(t *testing.T) {
	v := New()
	v.Merge("settings", Validate(&settings{}))
	v.Merge("plain", stderrors.New("boom"))
	v.Merge("none", nil)

	fields := map[string]bool{}
	for _, e := range v.Errors() {
		fields[e.Field] = true
	}
	for _, want := range []string{"name", "endpoint.address", "plain"} {
		if !fields[want] {
			t.Errorf("expected %q in merged errors, got %v", want, v.Errors())
		}
	}
	if fields["none"] {
		t.Error("nil errors must not be merged")
	}
}

func TestStructValidateValid(t *testing.T) {
	s := settings{Name: "svc", Level: "info", Endpoint: endpoint{Address: "localhost:4318", Retries: 2}}
	if err := Validate(&s); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	s := settings{Name: "x", Level: "loud", Endpoint: endpoint{Address: "nope", Retries: 9}}
	err := Validate(&s)
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}

	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected field details, got %T", appErr.Details["fields"])
	}
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}

	want := map[string]string{
		"name":             "must be at least 2 characters",
		"level":            "must be one of: debug info",
		"endpoint.address": "must be host:port",
		"endpoint.retries": "must be at most 5",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %s: expected %q, got %q", field, msg, got[field])
		}
	}
}

func TestStructValidateSquashedEmbedding(t *testing.T) {
	err := Validate(&extended{})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "name: is required") || !strings.Contains(msg, "extra: is required") {
		t.Errorf("expected flattened field names, got %q", msg)
	}
}

func TestStructValidateNonStruct(t *testing.T) {
	err := Validate("not a struct")
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":           "name",
		"ServiceVersion": "service_version",
		"A":              "a",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
