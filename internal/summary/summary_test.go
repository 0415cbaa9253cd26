package summary_test

import (
	"testing"
	"time"

	"github.com/wanderquiz/beacon/internal/event"
	"github.com/wanderquiz/beacon/internal/summary"
)

func ev(name string, ts time.Time, attrs map[string]interface{}) event.Event {
	return event.Event{
		ID:              name + "-id",
		Name:            name,
		ServerTimestamp: ts,
		Attributes:      attrs,
	}
}

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in      string
		want    summary.Period
		wantErr bool
	}{
		{"", summary.PeriodDay, false},
		{"day", summary.PeriodDay, false},
		{"week", summary.PeriodWeek, false},
		{"month", summary.PeriodMonth, false},
		{"year", summary.PeriodYear, false},
		{"hour", "", true},
		{"Day", "", true},
	}
	for _, tc := range cases {
		t.Run("in="+tc.in, func(t *testing.T) {
			got, err := summary.ParsePeriod(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePeriod(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParsePeriod(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWindowBoundary(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	exactlyAtBoundary := ev(event.QuizStart, now.Add(-24*time.Hour), nil)
	strictlyOlder := ev(event.QuizStart, now.Add(-24*time.Hour-time.Second), nil)
	inWindow := ev(event.QuizStart, now.Add(-time.Hour), nil)

	got := summary.FilterWindow([]event.Event{exactlyAtBoundary, strictlyOlder, inWindow}, summary.PeriodDay, now)
	if len(got) != 2 {
		t.Fatalf("FilterWindow kept %d events, want 2 (boundary inclusive, older excluded)", len(got))
	}
}

func TestWindowPrefersClientTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)
	late := ev(event.QuizStart, now, nil) // recent server clock...
	late.ClientTimestamp = &old           // ...but the producer saw it two days ago

	got := summary.FilterWindow([]event.Event{late}, summary.PeriodDay, now)
	if len(got) != 0 {
		t.Fatal("an event whose client timestamp is outside the window must be excluded")
	}
}

func TestCompletionRateBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	// No starts at all: never divide by zero.
	s := summary.Compute([]event.Event{ev(event.ProfileViewed, now, nil)}, summary.PeriodDay, now)
	if s.CompletionRate != 0 {
		t.Errorf("CompletionRate with no starts = %d, want 0", s.CompletionRate)
	}

	// Completed equals started.
	s = summary.Compute([]event.Event{
		ev(event.QuizStart, now, nil),
		ev(event.QuizCompleted, now, nil),
	}, summary.PeriodDay, now)
	if s.CompletionRate != 100 {
		t.Errorf("CompletionRate with 1/1 = %d, want 100", s.CompletionRate)
	}

	// Half completed.
	s = summary.Compute([]event.Event{
		ev(event.QuizStart, now, nil),
		ev(event.QuizStart, now, nil),
		ev(event.QuizCompleted, now, nil),
	}, summary.PeriodDay, now)
	if s.CompletionRate != 50 {
		t.Errorf("CompletionRate with 1/2 = %d, want 50", s.CompletionRate)
	}
}

func TestFunnelScenario(t *testing.T) {
	start := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	now := start.Add(10 * time.Second)
	events := []event.Event{
		ev(event.QuizStart, start, nil),
		ev(event.QuestionAnswered, start.Add(1*time.Second), map[string]interface{}{"questionIndex": float64(0)}),
		ev(event.QuizCompleted, start.Add(5*time.Second), map[string]interface{}{"travelerType": "Beach Bum"}),
		ev(event.ProfileShared, start.Add(6*time.Second), map[string]interface{}{"shareMethod": "twitter"}),
		ev(event.EmailSubmitted, start.Add(7*time.Second), map[string]interface{}{"source": "results"}),
	}

	s := summary.Compute(events, summary.PeriodDay, now)

	wantCounts := map[string]int{
		event.QuizStart:        1,
		event.QuestionAnswered: 1,
		event.QuizCompleted:    1,
		event.ProfileShared:    1,
		event.EmailSubmitted:   1,
	}
	for name, want := range wantCounts {
		if s.EventCounts[name] != want {
			t.Errorf("EventCounts[%s] = %d, want %d", name, s.EventCounts[name], want)
		}
	}
	if s.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d, want 5", s.TotalEvents)
	}
	if s.TravelerTypes["Beach Bum"] != 1 {
		t.Errorf("TravelerTypes = %v, want Beach Bum: 1", s.TravelerTypes)
	}
	if s.CompletionRate != 100 {
		t.Errorf("CompletionRate = %d, want 100", s.CompletionRate)
	}
	if s.ShareMethods["twitter"] != 100 {
		t.Errorf("ShareMethods = %v, want twitter: 100", s.ShareMethods)
	}
	if s.EmailSources["results"] != 1 {
		t.Errorf("EmailSources = %v, want results: 1", s.EmailSources)
	}
	if len(s.DailyActivity) != 1 {
		t.Fatalf("DailyActivity has %d buckets for a day window, want 1", len(s.DailyActivity))
	}
	if s.DailyActivity[0].Count != 5 {
		t.Errorf("DailyActivity[0].Count = %d, want 5", s.DailyActivity[0].Count)
	}
}

func TestDropOffBySteps(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	var events []event.Event
	add := func(idx, n int) {
		for i := 0; i < n; i++ {
			events = append(events, ev(event.QuestionAnswered, now, map[string]interface{}{"questionIndex": float64(idx)}))
		}
	}
	add(0, 4)
	add(1, 3)
	add(2, 3)

	s := summary.Compute(events, summary.PeriodDay, now)
	if len(s.DropOffBySteps) != 3 {
		t.Fatalf("DropOffBySteps has %d entries, want 3", len(s.DropOffBySteps))
	}
	want := []struct{ q, answered, pct int }{
		{0, 4, 25},  // 4 → 3
		{1, 3, 0},   // 3 → 3
		{2, 3, 100}, // nothing answered step 3
	}
	for i, w := range want {
		got := s.DropOffBySteps[i]
		if got.Question != w.q || got.Answered != w.answered || got.DropOffPct != w.pct {
			t.Errorf("step %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestUncategorizedAttributes(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	events := []event.Event{
		ev(event.QuizCompleted, now, nil),                                             // no travelerType
		ev(event.QuizCompleted, now, map[string]interface{}{"travelerType": 7}),       // wrong type
		ev(event.ProfileShared, now, map[string]interface{}{"shareMethod": "twitter"}),
		ev(event.ProfileShared, now, nil),
	}

	s := summary.Compute(events, summary.PeriodDay, now)
	if s.TravelerTypes[summary.Uncategorized] != 2 {
		t.Errorf("TravelerTypes = %v, want 2 uncategorized", s.TravelerTypes)
	}
	if s.ShareMethods["twitter"] != 50 || s.ShareMethods[summary.Uncategorized] != 50 {
		t.Errorf("ShareMethods = %v, want twitter and uncategorized at 50 each", s.ShareMethods)
	}
}

func TestEmptyInputYieldsZeroedStructures(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	s := summary.Compute(nil, summary.PeriodWeek, now)

	if s.TotalEvents != 0 || s.CompletionRate != 0 {
		t.Errorf("empty summary = %+v, want zeroed", s)
	}
	if len(s.EventCounts) != 0 || len(s.TravelerTypes) != 0 || len(s.ShareMethods) != 0 || len(s.EmailSources) != 0 {
		t.Error("empty summary should have empty maps, not nil entries")
	}
	if len(s.DailyActivity) != 7 {
		t.Fatalf("DailyActivity has %d buckets for a week window, want 7", len(s.DailyActivity))
	}
	for _, d := range s.DailyActivity {
		if d.Count != 0 {
			t.Errorf("bucket %s = %d, want 0", d.Date, d.Count)
		}
	}
	if s.DropOffBySteps != nil {
		t.Errorf("DropOffBySteps = %v, want nil", s.DropOffBySteps)
	}
}

func TestDailyActivityOrderedOldestFirst(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	events := []event.Event{
		ev(event.QuizStart, now.Add(-2*24*time.Hour), nil),
		ev(event.QuizStart, now, nil),
		ev(event.QuizStart, now, nil),
	}

	s := summary.Compute(events, summary.PeriodWeek, now)
	if len(s.DailyActivity) != 7 {
		t.Fatalf("DailyActivity has %d buckets, want 7", len(s.DailyActivity))
	}
	first, last := s.DailyActivity[0], s.DailyActivity[6]
	if first.Date >= last.Date {
		t.Errorf("buckets not ordered oldest-first: %s .. %s", first.Date, last.Date)
	}
	if last.Date != "2026-08-27" || last.Count != 2 {
		t.Errorf("newest bucket = %+v, want 2026-08-27 with 2", last)
	}
	if s.DailyActivity[4].Date != "2026-08-25" || s.DailyActivity[4].Count != 1 {
		t.Errorf("two-days-ago bucket = %+v, want 2026-08-25 with 1", s.DailyActivity[4])
	}
}
