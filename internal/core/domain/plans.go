package domain

import "time"

// PlanKind identifies a certificate plan.
type PlanKind string

const (
	PlanDaily   PlanKind = "daily"
	PlanWeekly  PlanKind = "weekly"
	PlanMonthly PlanKind = "monthly"
)

// Plan describes a certificate plan: how often it pays and at what rate.
// PeriodicRate is the fraction of principal paid out per interval.
type Plan struct {
	Kind           PlanKind
	Label          string
	DurationDays   int
	MonthlyPercent float64
	PeriodicRate   float64
	PayoutInterval time.Duration
}

// Plans is the certificate catalog. The daily rate is the platform's fixed
// daily constant, not monthly/30 exactly.
var Plans = map[PlanKind]Plan{
	PlanDaily: {
		Kind:           PlanDaily,
		Label:          "daily",
		DurationDays:   40,
		MonthlyPercent: 5.0,
		PeriodicRate:   0.1667 / 100,
		PayoutInterval: 24 * time.Hour,
	},
	PlanWeekly: {
		Kind:           PlanWeekly,
		Label:          "weekly",
		DurationDays:   40,
		MonthlyPercent: 6.0,
		PeriodicRate:   1.4 / 100,
		PayoutInterval: 7 * 24 * time.Hour,
	},
	PlanMonthly: {
		Kind:           PlanMonthly,
		Label:          "monthly",
		DurationDays:   40,
		MonthlyPercent: 10.0,
		PeriodicRate:   10.0 / 100,
		PayoutInterval: 30 * 24 * time.Hour,
	},
}

// PlanFor returns the plan for a kind, false if unknown.
func PlanFor(kind PlanKind) (Plan, bool) {
	p, ok := Plans[kind]
	return p, ok
}
