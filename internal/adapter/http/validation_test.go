package http

import (
	"errors"
	"strings"
	"testing"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestToken64Validation(t *testing.T) {
	type P struct {
		Token string `validate:"token64"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{Token: strings.Repeat("a", 64)}); err != nil {
		t.Fatalf("expected valid token64, got err: %v", err)
	}
	for _, s := range []string{
		"",
		strings.Repeat("A", 64), // uppercase
		strings.Repeat("a", 32), // old length
		strings.Repeat("g", 64), // non-hex
		strings.Repeat("a", 65), // too long
		strings.Repeat("a", 63), // too short
	} {
		err := cv.Validate(P{Token: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if !containsFieldMsg(ToFieldErrors(err), "Token", "64-char lowercase hex") {
			t.Fatalf("expected token64 message for %q, got: %+v", s, ToFieldErrors(err))
		}
	}
}

func TestMoneyValidation(t *testing.T) {
	type P struct {
		Value string `validate:"money"`
	}
	cv := NewValidator()

	for _, v := range []string{"0", "3500", "3500.5", "12000.00"} {
		if err := cv.Validate(P{Value: v}); err != nil {
			t.Fatalf("expected money OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"", "-1", "1.234", "1,000", "abc"} {
		err := cv.Validate(P{Value: v})
		if err == nil {
			t.Fatalf("expected money error for %q", v)
		}
		if !containsFieldMsg(ToFieldErrors(err), "Value", "at most 2 decimal places") {
			t.Fatalf("expected money message for %q, got %+v", v, ToFieldErrors(err))
		}
	}
}

func TestRequiredAndFormatMapping(t *testing.T) {
	type P struct {
		Name      string   `validate:"required"`
		Email     string   `validate:"email"`
		Start     string   `validate:"datetime=2006-01-02"`
		Condition string   `validate:"oneof=good fair"`
		IDs       []uint64 `validate:"min=1"`
		Grade     int      `validate:"gte=1"`
	}
	cv := NewValidator()

	err := cv.Validate(P{Email: "nope", Start: "05/01/2025", Condition: "shiny"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)
	checks := map[string]string{
		"Name":      "is required",
		"Email":     "valid email",
		"Start":     "2006-01-02",
		"Condition": "one of: good fair",
		"IDs":       "at least 1",
		"Grade":     "greater than or equal to 1",
	}
	for field, msg := range checks {
		if !containsFieldMsg(fe, field, msg) {
			t.Fatalf("missing %q for %s: %+v", msg, field, fe)
		}
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 || fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe)
	}
}
