package matrix

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ictloan-backend/internal/domain/notification"

	"github.com/shopspring/decimal"
)

var (
	ErrNoApprover    = errors.New("no approver configured for application")
	ErrInvalidMatrix = errors.New("invalid approval matrix")
)

// Tier routes applications up to MaxGrade and MaxValue to one approver.
// A zero MaxGrade or a nil MaxValue means no limit on that axis.
type Tier struct {
	MaxGrade int
	MaxValue *decimal.Decimal
	Approver notification.Approver
}

func (t Tier) matches(grade int, value decimal.Decimal) bool {
	if t.MaxGrade > 0 && grade > t.MaxGrade {
		return false
	}
	if t.MaxValue != nil && value.GreaterThan(*t.MaxValue) {
		return false
	}
	return true
}

// Static is a tiered approval matrix loaded from configuration. The first
// matching tier wins; tiers are kept ordered from the narrowest.
type Static struct {
	tiers []Tier
}

func New(tiers []Tier) *Static {
	out := append([]Tier(nil), tiers...)
	sort.SliceStable(out, func(i, j int) bool {
		return limit(out[i]) < limit(out[j])
	})
	return &Static{tiers: out}
}

// limit orders tiers: bounded grade first, unbounded tiers last.
func limit(t Tier) int {
	g := t.MaxGrade
	if g == 0 {
		g = int(^uint(0) >> 1)
	}
	return g
}

// Parse reads "maxGrade:maxValue:email:name;..." where maxGrade or
// maxValue may be "*" for no limit.
func Parse(s string) (*Static, error) {
	var tiers []Tier
	for _, raw := range strings.Split(s, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, ":", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w: tier %q needs maxGrade:maxValue:email:name", ErrInvalidMatrix, raw)
		}
		var t Tier
		if g := strings.TrimSpace(parts[0]); g != "*" {
			n, err := strconv.Atoi(g)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: grade %q", ErrInvalidMatrix, g)
			}
			t.MaxGrade = n
		}
		if v := strings.TrimSpace(parts[1]); v != "*" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("%w: value %q", ErrInvalidMatrix, v)
			}
			t.MaxValue = &d
		}
		t.Approver = notification.Approver{
			Email: strings.TrimSpace(parts[2]),
			Name:  strings.TrimSpace(parts[3]),
		}
		if t.Approver.Email == "" {
			return nil, fmt.Errorf("%w: tier %q has no email", ErrInvalidMatrix, raw)
		}
		tiers = append(tiers, t)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidMatrix)
	}
	return New(tiers), nil
}

func (m *Static) DetermineApprover(_ context.Context, grade int, value decimal.Decimal) (notification.Approver, error) {
	for _, t := range m.tiers {
		if t.matches(grade, value) {
			return t.Approver, nil
		}
	}
	return notification.Approver{}, fmt.Errorf("%w: grade %d value %s", ErrNoApprover, grade, value.StringFixed(2))
}
