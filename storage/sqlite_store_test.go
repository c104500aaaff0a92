package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hourbook/timesheet"
)

func TestStartAndStopEntryLifecycle(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	id, err := store.StartEntry(timesheet.Entry{
		Owner:     "me",
		Project:   "Project A",
		StartTime: start,
		Billable:  true,
	})
	if err != nil {
		t.Fatalf("start entry: %v", err)
	}

	active, running, err := store.ActiveEntry("me")
	if err != nil {
		t.Fatalf("active entry: %v", err)
	}
	if !running || active.ID != id {
		t.Fatalf("expected running entry %d, got running=%v id=%d", id, running, active.ID)
	}
	if !active.Active() {
		t.Fatalf("expected active entry to have no end time")
	}

	if err := store.StopEntry(id, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("stop entry: %v", err)
	}

	stopped, found, err := store.GetEntryByID(id)
	if err != nil || !found {
		t.Fatalf("get stopped entry: found=%v err=%v", found, err)
	}
	seconds, ok := stopped.Seconds()
	if !ok || seconds != 7200 {
		t.Fatalf("expected 7200 finalized seconds, got %d ok=%v", seconds, ok)
	}

	if _, running, err := store.ActiveEntry("me"); err != nil || running {
		t.Fatalf("expected no running entry after stop, running=%v err=%v", running, err)
	}
}

func TestStartEntryRejectsSecondTimerPerOwner(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	if _, err := store.StartEntry(timesheet.Entry{Owner: "me", StartTime: start}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := store.StartEntry(timesheet.Entry{Owner: "me", StartTime: start.Add(time.Minute)}); !errors.Is(err, ErrTimerRunning) {
		t.Fatalf("expected ErrTimerRunning, got %v", err)
	}

	// A different owner may run a timer in parallel.
	if _, err := store.StartEntry(timesheet.Entry{Owner: "other", StartTime: start}); err != nil {
		t.Fatalf("start for other owner: %v", err)
	}
}

func TestStopEntryRejectsInvalidStops(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	id, err := store.StartEntry(timesheet.Entry{Owner: "me", StartTime: start})
	if err != nil {
		t.Fatalf("start entry: %v", err)
	}

	if err := store.StopEntry(id, start.Add(-time.Minute)); err == nil {
		t.Fatalf("expected error stopping before start")
	}
	if err := store.StopEntry(99, start.Add(time.Hour)); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	if err := store.StopEntry(id, start.Add(time.Hour)); err != nil {
		t.Fatalf("stop entry: %v", err)
	}
	if err := store.StopEntry(id, start.Add(2*time.Hour)); !errors.Is(err, ErrTimerStopped) {
		t.Fatalf("expected ErrTimerStopped, got %v", err)
	}
}

func TestInsertEntryValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	before := start.Add(-time.Hour)

	if _, err := store.InsertEntry(timesheet.Entry{Owner: "me", StartTime: start}); err == nil {
		t.Fatalf("expected error for missing end time")
	}
	if _, err := store.InsertEntry(timesheet.Entry{Owner: "me", StartTime: start, EndTime: &before}); err == nil {
		t.Fatalf("expected error for end before start")
	}
	if _, err := store.InsertEntry(timesheet.Entry{StartTime: start, EndTime: &end}); err == nil {
		t.Fatalf("expected error for missing owner")
	}

	if _, err := store.InsertEntry(timesheet.Entry{Owner: "me", StartTime: start, EndTime: &end}); err != nil {
		t.Fatalf("insert valid entry: %v", err)
	}
}

func TestListEntriesOrderingAndScope(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	// Inserted out of chronological order on purpose.
	insertFinalized(t, store, "me", "Project B", base.Add(4*time.Hour), time.Hour)
	insertFinalized(t, store, "me", "Project A", base, time.Hour)
	insertFinalized(t, store, "me", "Project A", base.Add(2*time.Hour), time.Hour)
	insertFinalized(t, store, "other", "Project A", base, time.Hour)

	entries, err := store.ListEntries(Scope{Owner: "me"})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries for owner, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].StartTime.Before(entries[i-1].StartTime) {
			t.Fatalf("entries out of order at %d: %v before %v", i, entries[i].StartTime, entries[i-1].StartTime)
		}
	}

	scoped, err := store.ListEntries(Scope{Owner: "me", Project: "Project A"})
	if err != nil {
		t.Fatalf("list project entries: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("expected 2 Project A entries, got %d", len(scoped))
	}

	recent, err := store.ListEntries(Scope{Owner: "me", Since: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("list recent entries: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries since cutoff, got %d", len(recent))
	}

	if _, err := store.ListEntries(Scope{}); err == nil {
		t.Fatalf("expected error for missing scope owner")
	}
}

func TestEntryRoundTripPreservesOptionalFields(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	hourly := 85.5

	id, err := store.InsertEntry(timesheet.Entry{
		Owner:       "me",
		Project:     "Project A",
		Task:        "API design",
		Description: "Sketched the endpoints",
		StartTime:   start,
		EndTime:     &end,
		Billable:    true,
		HourlyRate:  &hourly,
	})
	if err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	got, found, err := store.GetEntryByID(id)
	if err != nil || !found {
		t.Fatalf("get entry: found=%v err=%v", found, err)
	}
	if !got.StartTime.Equal(start) {
		t.Fatalf("expected start %v, got %v", start, got.StartTime)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Fatalf("expected end %v, got %v", end, got.EndTime)
	}
	if got.HourlyRate == nil || *got.HourlyRate != hourly {
		t.Fatalf("expected rate %f, got %v", hourly, got.HourlyRate)
	}
	if got.InvoiceID != nil {
		t.Fatalf("expected nil invoice id, got %v", *got.InvoiceID)
	}
	if !got.Billable {
		t.Fatalf("expected billable entry")
	}

	// Entry without optional fields comes back with nil pointers.
	bare := insertFinalized(t, store, "me", "", start.Add(3*time.Hour), time.Hour)
	got, _, err = store.GetEntryByID(bare)
	if err != nil {
		t.Fatalf("get bare entry: %v", err)
	}
	if got.HourlyRate != nil {
		t.Fatalf("expected nil rate, got %v", *got.HourlyRate)
	}
}

func TestUpdateAndDeleteRefuseBilledEntries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	id := insertBillableFinalized(t, store, "me", start, time.Hour, 50)

	if linked, err := store.SaveInvoiceDraft("inv_2024-017", "2024-017", []int64{id}); err != nil || linked != 1 {
		t.Fatalf("save invoice draft: linked=%d err=%v", linked, err)
	}

	billed, _, err := store.GetEntryByID(id)
	if err != nil {
		t.Fatalf("get billed entry: %v", err)
	}
	if !billed.Billed() || *billed.InvoiceID != "inv_2024-017" {
		t.Fatalf("expected invoice link, got %+v", billed.InvoiceID)
	}

	billed.Description = "tampered"
	if err := store.UpdateEntry(billed); !errors.Is(err, ErrEntryBilled) {
		t.Fatalf("expected ErrEntryBilled on update, got %v", err)
	}
	if _, err := store.DeleteEntry(id); !errors.Is(err, ErrEntryBilled) {
		t.Fatalf("expected ErrEntryBilled on delete, got %v", err)
	}
}

func TestSaveInvoiceDraftSkipsRunningAndBilledEntries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	finalized := insertBillableFinalized(t, store, "me", start, time.Hour, 50)
	running, err := store.StartEntry(timesheet.Entry{Owner: "other", StartTime: start, Billable: true})
	if err != nil {
		t.Fatalf("start running entry: %v", err)
	}

	alreadyBilled := insertBillableFinalized(t, store, "me", start.Add(2*time.Hour), time.Hour, 50)
	if _, err := store.SaveInvoiceDraft("inv_a", "A", []int64{alreadyBilled}); err != nil {
		t.Fatalf("first draft: %v", err)
	}

	linked, err := store.SaveInvoiceDraft("inv_b", "B", []int64{finalized, running, alreadyBilled})
	if err != nil {
		t.Fatalf("second draft: %v", err)
	}
	if linked != 1 {
		t.Fatalf("expected exactly 1 linked entry, got %d", linked)
	}

	kept, _, err := store.GetEntryByID(alreadyBilled)
	if err != nil {
		t.Fatalf("get already billed entry: %v", err)
	}
	if *kept.InvoiceID != "inv_a" {
		t.Fatalf("expected original invoice link to survive, got %s", *kept.InvoiceID)
	}
}

func TestSaveInvoiceDraftRejectsDuplicateNumber(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	first := insertBillableFinalized(t, store, "me", start, time.Hour, 50)
	second := insertBillableFinalized(t, store, "me", start.Add(2*time.Hour), time.Hour, 50)

	if _, err := store.SaveInvoiceDraft("inv_1", "2024-017", []int64{first}); err != nil {
		t.Fatalf("first draft: %v", err)
	}
	if _, err := store.SaveInvoiceDraft("inv_2", "2024-017", []int64{second}); err == nil {
		t.Fatalf("expected unique constraint error for duplicate number")
	}

	// The failed transaction must not have linked anything.
	entry, _, err := store.GetEntryByID(second)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.Billed() {
		t.Fatalf("expected rolled-back entry to stay unbilled")
	}
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	id := insertFinalized(t, store, "me", "Project A", start, time.Hour)

	deleted, err := store.DeleteEntry(id)
	if err != nil || !deleted {
		t.Fatalf("delete entry: deleted=%v err=%v", deleted, err)
	}
	deleted, err = store.DeleteEntry(id)
	if err != nil || deleted {
		t.Fatalf("expected no-op second delete, deleted=%v err=%v", deleted, err)
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "hourbook.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func insertFinalized(t *testing.T, store *SQLiteStore, owner, project string, start time.Time, duration time.Duration) int64 {
	t.Helper()

	end := start.Add(duration)
	id, err := store.InsertEntry(timesheet.Entry{
		Owner:     owner,
		Project:   project,
		StartTime: start,
		EndTime:   &end,
	})
	if err != nil {
		t.Fatalf("insert finalized entry: %v", err)
	}
	return id
}

func insertBillableFinalized(t *testing.T, store *SQLiteStore, owner string, start time.Time, duration time.Duration, hourlyRate float64) int64 {
	t.Helper()

	end := start.Add(duration)
	id, err := store.InsertEntry(timesheet.Entry{
		Owner:      owner,
		StartTime:  start,
		EndTime:    &end,
		Billable:   true,
		HourlyRate: &hourlyRate,
	})
	if err != nil {
		t.Fatalf("insert billable entry: %v", err)
	}
	return id
}
