package models

import (
	"time"

	dErrors "deletionguard/pkg/domain-errors"
)

// QuotaPeriod names one of the three quota counters.
type QuotaPeriod string

const (
	PeriodDaily   QuotaPeriod = "daily"
	PeriodWeekly  QuotaPeriod = "weekly"
	PeriodMonthly QuotaPeriod = "monthly"
)

// RuleName is the rule reported when this period rejects.
func (p QuotaPeriod) RuleName() string {
	return string(p) + "_quota"
}

const weeklyPeriod = 7 * 24 * time.Hour

type QuotaLimits struct {
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
}

func (l QuotaLimits) Validate() error {
	if l.Daily <= 0 || l.Weekly <= 0 || l.Monthly <= 0 {
		return dErrors.New(dErrors.CodeConfiguration, "quota limits must be positive")
	}
	return nil
}

// UserQuota holds the per-user counters. Counters only move up through
// Consume and back to zero through Rollover.
type UserQuota struct {
	UserID        string      `json:"user_id"`
	Limits        QuotaLimits `json:"limits"`
	DailyUsed     int         `json:"daily_used"`
	WeeklyUsed    int         `json:"weekly_used"`
	MonthlyUsed   int         `json:"monthly_used"`
	DailyAnchor   time.Time   `json:"daily_anchor"`
	WeeklyAnchor  time.Time   `json:"weekly_anchor"`
	MonthlyAnchor time.Time   `json:"monthly_anchor"`
	LastActivity  time.Time   `json:"last_activity"`
	// Override marks limits set by an operator. Overridden records are kept
	// through idle sweeps so the user never falls back to the defaults.
	Override bool `json:"override"`
}

func NewUserQuota(userID string, limits QuotaLimits, now time.Time) *UserQuota {
	return &UserQuota{
		UserID:        userID,
		Limits:        limits,
		DailyAnchor:   now,
		WeeklyAnchor:  now,
		MonthlyAnchor: now,
		LastActivity:  now,
	}
}

// Rollover resets every counter whose period boundary has been crossed.
// Daily and monthly boundaries are calendar-based in loc; the weekly one is a
// rolling seven days from its anchor.
func (q *UserQuota) Rollover(now time.Time, loc *time.Location) {
	n := now.In(loc)

	dy, dm, dd := q.DailyAnchor.In(loc).Date()
	ny, nm, nd := n.Date()
	if dy != ny || dm != nm || dd != nd {
		q.DailyUsed = 0
		q.DailyAnchor = now
	}

	if now.Sub(q.WeeklyAnchor) >= weeklyPeriod {
		q.WeeklyUsed = 0
		q.WeeklyAnchor = now
	}

	my, mm, _ := q.MonthlyAnchor.In(loc).Date()
	if my != ny || mm != nm {
		q.MonthlyUsed = 0
		q.MonthlyAnchor = now
	}
}

// ResetAt returns when the given period next rolls over.
func (q *UserQuota) ResetAt(p QuotaPeriod, loc *time.Location) time.Time {
	switch p {
	case PeriodDaily:
		y, m, d := q.DailyAnchor.In(loc).Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	case PeriodWeekly:
		return q.WeeklyAnchor.Add(weeklyPeriod)
	default:
		y, m, _ := q.MonthlyAnchor.In(loc).Date()
		return time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	}
}

// Exceeded lists the periods whose counter has reached its limit, in
// daily, weekly, monthly order.
func (q *UserQuota) Exceeded() []QuotaPeriod {
	var out []QuotaPeriod
	if q.DailyUsed >= q.Limits.Daily {
		out = append(out, PeriodDaily)
	}
	if q.WeeklyUsed >= q.Limits.Weekly {
		out = append(out, PeriodWeekly)
	}
	if q.MonthlyUsed >= q.Limits.Monthly {
		out = append(out, PeriodMonthly)
	}
	return out
}

// Remaining is the smallest headroom across the three periods.
func (q *UserQuota) Remaining() int {
	return max(0, min(q.Limits.Daily-q.DailyUsed, q.Limits.Weekly-q.WeeklyUsed, q.Limits.Monthly-q.MonthlyUsed))
}

// Increment bumps all three counters together.
func (q *UserQuota) Increment(now time.Time) {
	q.DailyUsed++
	q.WeeklyUsed++
	q.MonthlyUsed++
	q.LastActivity = now
}
