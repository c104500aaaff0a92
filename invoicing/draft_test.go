package invoicing

import (
	"testing"
	"time"

	"hourbook/timesheet"
)

func TestBuildDraft_AccumulatesLineItems(t *testing.T) {
	t.Parallel()

	hourly := 80.0
	first := candidate(1, "Project A", 3600)
	first.Description = "API design"
	first.HourlyRate = &hourly
	second := candidate(2, "Project A", 1800)
	second.Task = "Review"
	second.HourlyRate = &hourly

	draft := BuildDraft("2024-017", []timesheet.Entry{first, second})

	if draft.Number != "2024-017" {
		t.Fatalf("expected draft number 2024-017, got %s", draft.Number)
	}
	if len(draft.Lines) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(draft.Lines))
	}
	if draft.Lines[0].Description != "API design" {
		t.Fatalf("expected description from entry, got %q", draft.Lines[0].Description)
	}
	if draft.Lines[1].Description != "Review" {
		t.Fatalf("expected task fallback, got %q", draft.Lines[1].Description)
	}
	if draft.TotalSeconds != 5400 {
		t.Fatalf("expected 5400 total seconds, got %d", draft.TotalSeconds)
	}
	if draft.TotalAmount != 120 {
		t.Fatalf("expected total amount 120, got %f", draft.TotalAmount)
	}
}

func TestBuildDraft_FallsBackToGenericDescription(t *testing.T) {
	t.Parallel()

	draft := BuildDraft("2024-018", []timesheet.Entry{candidate(42, "Project A", 900)})

	if got := draft.Lines[0].Description; got != "Time entry 42" {
		t.Fatalf("expected generic description, got %q", got)
	}
}

func TestBuildDraft_SkipsEntriesWithoutValidDuration(t *testing.T) {
	t.Parallel()

	running := timesheet.Entry{
		ID:        7,
		StartTime: time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local),
		Billable:  true,
	}

	draft := BuildDraft("2024-019", []timesheet.Entry{running})

	if len(draft.Lines) != 0 || draft.TotalSeconds != 0 {
		t.Fatalf("expected empty draft for running entry, got %+v", draft)
	}
}
