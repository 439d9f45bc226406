package integration

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/ticket"

	"github.com/shopspring/decimal"
)

// GetUnifiedAssetHistory merges loans and maintenance tickets, newest first.
// An unknown asset yields an empty timeline.
func (e *Engine) GetUnifiedAssetHistory(ctx context.Context, assetID uint64) ([]HistoryEntry, error) {
	loans, err := e.reads.Loans.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	tickets, err := e.reads.Tickets.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return mergeHistory(loans, tickets), nil
}

func mergeHistory(loans []loan.AssetLoan, tickets []ticket.Ticket) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(loans)+len(tickets))
	for _, l := range loans {
		out = append(out, HistoryEntry{
			Type:      HistoryLoan,
			Date:      l.CreatedAt,
			Reference: l.ApplicationNumber,
			Status:    string(l.Status),
			Summary: fmt.Sprintf("%s, %s to %s", l.ApplicantName,
				l.LoanStartDate.Format(time.DateOnly), l.LoanEndDate.Format(time.DateOnly)),
		})
	}
	for _, t := range tickets {
		out = append(out, HistoryEntry{
			Type:      HistoryMaintenance,
			Date:      t.CreatedAt,
			Reference: t.TicketNumber,
			Status:    string(t.Status),
			Summary:   t.Subject,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// GetAssetLifecycleReport needs the asset itself, so an unknown id is an error.
func (e *Engine) GetAssetLifecycleReport(ctx context.Context, assetID uint64) (*LifecycleReport, error) {
	a, err := e.reads.Assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	loans, err := e.reads.Loans.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	tickets, err := e.reads.Tickets.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	stats, err := e.GetAssetMaintenanceStats(ctx, assetID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	rep := &LifecycleReport{
		Asset: AssetSummary{
			ID:           a.ID,
			AssetTag:     a.AssetTag,
			Name:         a.Name,
			Brand:        a.Brand,
			Model:        a.Model,
			SerialNumber: a.SerialNumber,
			Status:       a.Status,
			Condition:    a.Condition,
			TotalLoans:   a.TotalLoans,
			InService:    a.InServiceSince(),
		},
		Loans:       make([]LoanRecord, 0, len(loans)),
		Maintenance: make([]TicketDTO, 0, len(tickets)),
		Stats:       *stats,
		GeneratedAt: now,
	}
	for _, l := range loans {
		rep.Loans = append(rep.Loans, LoanRecord{
			ApplicationNumber: l.ApplicationNumber,
			ApplicantName:     l.ApplicantName,
			Status:            string(l.Status),
			StartDate:         l.LoanStartDate,
			EndDate:           l.LoanEndDate,
			IssuedAt:          l.IssuedAt,
			ReturnedAt:        l.ReturnedAt,
			ConditionBefore:   l.ConditionBefore,
			ConditionAfter:    l.ConditionAfter,
		})
	}
	for i := range tickets {
		rep.Maintenance = append(rep.Maintenance, *toTicketDTO(&tickets[i]))
	}

	loaned := loanedTime(loans, now)
	lifetime := now.Sub(a.InServiceSince())
	rep.LoanedHours = roundTo(loaned.Hours(), 2)
	rep.LifetimeHours = roundTo(lifetime.Hours(), 2)
	rep.UtilizationRate = utilization(loaned, lifetime)
	return rep, nil
}

// loanedTime sums issue-to-return spans; loans still out count until now.
func loanedTime(loans []loan.AssetLoan, now time.Time) time.Duration {
	var total time.Duration
	for _, l := range loans {
		if l.IssuedAt == nil {
			continue
		}
		end := now
		if l.ReturnedAt != nil {
			end = *l.ReturnedAt
		}
		if end.After(*l.IssuedAt) {
			total += end.Sub(*l.IssuedAt)
		}
	}
	return total
}

// utilization is loaned/lifetime clamped to [0, 1], four decimal places.
func utilization(loaned, lifetime time.Duration) decimal.Decimal {
	if lifetime <= 0 || loaned <= 0 {
		return decimal.Zero
	}
	rate := decimal.NewFromInt(int64(loaned)).Div(decimal.NewFromInt(int64(lifetime)))
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = decimal.NewFromInt(1)
	}
	return rate.Round(4)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
