package summary

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wanderquiz/beacon/internal/event"
)

// Period selects the aggregation window ending at "now".
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Uncategorized buckets events whose grouping attribute is missing or of
// the wrong type; aggregation is total, it never rejects an event.
const Uncategorized = "uncategorized"

// ParsePeriod maps a query value to a Period; empty defaults to day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s), nil
	default:
		return "", fmt.Errorf("unknown period %q (want day, week, month or year)", s)
	}
}

// Duration is the window length. Month and year are fixed at 30 and 365
// days to keep the histogram bucket count stable.
func (p Period) Duration() time.Duration {
	return time.Duration(p.Days()) * 24 * time.Hour
}

// Days is the number of daily histogram buckets for the period.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodYear:
		return 365
	default:
		return 1
	}
}

// Summary is the dashboard aggregate over one window.
type Summary struct {
	Period         Period         `json:"period"`
	TotalEvents    int            `json:"total_events"`
	EventCounts    map[string]int `json:"event_counts"`
	TravelerTypes  map[string]int `json:"traveler_types"`
	DailyActivity  []DayCount     `json:"daily_activity"`
	CompletionRate int            `json:"completion_rate"`
	DropOffBySteps []StepDropOff  `json:"drop_off_by_step"`
	ShareMethods   map[string]int `json:"share_methods"`
	EmailSources   map[string]int `json:"email_sources"`
}

// DayCount is one histogram bucket.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// StepDropOff reports, per question index, how many sessions answered it
// and what fraction did not answer the next one.
type StepDropOff struct {
	Question   int `json:"question"`
	Answered   int `json:"answered"`
	DropOffPct int `json:"drop_off_pct"`
}

// Compute derives every dashboard metric from the events falling within
// the window ending at now. It is total on well-formed input: empty or
// fully-filtered logs yield zeroed structures, never an error.
func Compute(events []event.Event, p Period, now time.Time) *Summary {
	windowed := FilterWindow(events, p, now)

	s := &Summary{
		Period:        p,
		TotalEvents:   len(windowed),
		EventCounts:   countsByName(windowed),
		TravelerTypes: groupAttr(windowed, event.QuizCompleted, "travelerType"),
		DailyActivity: dailyActivity(windowed, p, now),
		ShareMethods:  percentages(groupAttr(windowed, event.ProfileShared, "shareMethod")),
		EmailSources:  groupAttr(windowed, event.EmailSubmitted, "source"),
	}
	s.CompletionRate = completionRate(s.EventCounts)
	s.DropOffBySteps = dropOffBySteps(windowed)
	return s
}

// FilterWindow keeps events whose effective timestamp falls within
// [now - period, now]. The lower bound is inclusive.
func FilterWindow(events []event.Event, p Period, now time.Time) []event.Event {
	cutoff := now.Add(-p.Duration())
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		ts := ev.EffectiveTime()
		if !ts.Before(cutoff) && !ts.After(now) {
			out = append(out, ev)
		}
	}
	return out
}

func countsByName(events []event.Event) map[string]int {
	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.Name]++
	}
	return counts
}

// groupAttr counts events named name, grouped by the string attribute key.
func groupAttr(events []event.Event, name, key string) map[string]int {
	counts := make(map[string]int)
	for _, ev := range events {
		if ev.Name != name {
			continue
		}
		group, ok := ev.StringAttr(key)
		if !ok || group == "" {
			group = Uncategorized
		}
		counts[group]++
	}
	return counts
}

// percentages normalizes counts to integer percentages of their own total.
func percentages(counts map[string]int) map[string]int {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make(map[string]int, len(counts))
	if total == 0 {
		return out
	}
	for k, c := range counts {
		out[k] = roundPct(c, total)
	}
	return out
}

// completionRate is completed/started as an integer percent, 0 when
// nothing started (never divide by zero).
func completionRate(counts map[string]int) int {
	starts := counts[event.QuizStart]
	if starts == 0 {
		return 0
	}
	return roundPct(counts[event.QuizCompleted], starts)
}

// dropOffBySteps reports, for each answered question index, the fraction
// of sessions that did not answer the next one. Out-of-order answering can
// make a later step larger than an earlier one; the drop-off clamps at 0.
func dropOffBySteps(events []event.Event) []StepDropOff {
	answered := make(map[int]int)
	for _, ev := range events {
		if ev.Name != event.QuestionAnswered {
			continue
		}
		idx, ok := ev.IntAttr("questionIndex")
		if !ok || idx < 0 {
			continue
		}
		answered[idx]++
	}
	if len(answered) == 0 {
		return nil
	}

	steps := make([]int, 0, len(answered))
	for idx := range answered {
		steps = append(steps, idx)
	}
	sort.Ints(steps)

	out := make([]StepDropOff, 0, len(steps))
	for _, idx := range steps {
		cur := answered[idx]
		dropped := cur - answered[idx+1]
		if dropped < 0 {
			dropped = 0
		}
		out = append(out, StepDropOff{
			Question:   idx,
			Answered:   cur,
			DropOffPct: roundPct(dropped, cur),
		})
	}
	return out
}

// dailyActivity buckets events per day over the window, oldest to newest.
func dailyActivity(events []event.Event, p Period, now time.Time) []DayCount {
	perDay := make(map[string]int)
	for _, ev := range events {
		perDay[ev.EffectiveTime().Format("2006-01-02")]++
	}
	days := p.Days()
	out := make([]DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, DayCount{Date: date, Count: perDay[date]})
	}
	return out
}

func roundPct(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
