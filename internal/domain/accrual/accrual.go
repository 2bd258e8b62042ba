// Package accrual computes how much money a resource has already
// wasted since creation, with sub-day precision for very young
// resources.
package accrual

import (
	"fmt"
	"strings"
	"time"
)

// UnknownAgeDays is the sentinel for an untracked resource age.
const UnknownAgeDays = -1

// SubHourFloor is the figure shown for resources under an hour old.
// A literal $0.00 would read as "no waste found"; a nominal cent
// communicates that the resource is actively, if minimally, costing
// money. Product decision, not an arithmetic artifact.
const SubHourFloor = 0.01

const daysPerMonth = 30

// Accrual is the cumulative estimated cost wasted since a resource's
// creation, plus a human-readable age label. Known is false when the
// age cannot be established; callers then show an "age unknown" notice
// instead of a figure.
type Accrual struct {
	Amount float64
	Label  string
	Known  bool
}

// unknown is the neutral result every malformed input degrades to.
func unknown() Accrual { return Accrual{} }

// Accrue turns an estimated monthly cost and an age into the money
// wasted so far. ageDays carries whole days with -1 meaning unknown;
// createdAt is consulted only when ageDays is zero, to recover sub-day
// precision from the creation timestamp. Total over its input domain:
// every parse failure returns an unknown result, never an error.
func Accrue(monthlyCost float64, ageDays int, createdAt string, now time.Time) Accrual {
	dailyCost := monthlyCost / daysPerMonth

	switch {
	case ageDays < 0:
		return unknown()

	case ageDays > 0:
		return Accrual{
			Amount: dailyCost * float64(ageDays),
			Label:  pluralize(ageDays, "day"),
			Known:  true,
		}
	}

	// Age zero: fall back to the creation timestamp.
	created, ok := parseTimestamp(createdAt)
	if !ok {
		return unknown()
	}

	// Truncates toward zero, so a createdAt ahead of now (clock skew)
	// still lands on the sub-hour floor below.
	ageHours := int(now.Sub(created).Hours())
	if ageHours > 0 {
		hourlyCost := dailyCost / 24
		return Accrual{
			Amount: hourlyCost * float64(ageHours),
			Label:  pluralize(ageHours, "hour"),
			Known:  true,
		}
	}

	return Accrual{Amount: SubHourFloor, Label: "less than 1 hour", Known: true}
}

// parseTimestamp parses an ISO-8601 timestamp, tolerating the +00:00
// UTC suffix form and timestamps without an offset.
func parseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(ts, "+00:00") {
		ts = strings.TrimSuffix(ts, "+00:00") + "Z"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
