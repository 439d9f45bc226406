package loan

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("loan end date is before start date")

// DateRange is a closed interval of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Overlaps uses closed-interval semantics: ranges that touch on a boundary
// day conflict. Two ranges are disjoint only when one ends strictly before
// the other begins.
func (r DateRange) Overlaps(o DateRange) bool {
	a, b := r.normalized(), o.normalized()
	return !(b.End.Before(a.Start) || b.Start.After(a.End))
}

// Days counts calendar days including both ends.
func (r DateRange) Days() int {
	n := r.normalized()
	return int(n.End.Sub(n.Start).Hours()/24) + 1
}

func (r DateRange) normalized() DateRange {
	return DateRange{Start: truncateDay(r.Start), End: truncateDay(r.End)}
}
