package matrix

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAndDetermine(t *testing.T) {
	m, err := Parse("*:*:director@example.gov.my:Director; 40:5000:head@example.gov.my:Head of Unit ;44:20000:deputy@example.gov.my:Deputy")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		name  string
		grade int
		value string
		want  string
	}{
		{"junior small", 29, "3500", "head@example.gov.my"},
		{"junior large", 29, "12000", "deputy@example.gov.my"},
		{"grade 44 small", 44, "100", "deputy@example.gov.my"},
		{"senior", 52, "100", "director@example.gov.my"},
		{"boundary value", 40, "5000.00", "head@example.gov.my"},
		{"over every cap", 29, "999999", "director@example.gov.my"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.DetermineApprover(context.Background(), tc.grade, decimal.RequireFromString(tc.value))
			if err != nil {
				t.Fatal(err)
			}
			if got.Email != tc.want {
				t.Fatalf("got %s, want %s", got.Email, tc.want)
			}
		})
	}
}

func TestDetermine_NoMatch(t *testing.T) {
	m, err := Parse("40:5000:head@example.gov.my:Head")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.DetermineApprover(context.Background(), 48, decimal.NewFromInt(10)); !errors.Is(err, ErrNoApprover) {
		t.Fatalf("want ErrNoApprover, got %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ;  ", "x:1:a@b:c", "40:abc:a@b:c", "40:100::Name", "40:100:a@b"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidMatrix) {
			t.Fatalf("Parse(%q): want ErrInvalidMatrix, got %v", in, err)
		}
	}
}
