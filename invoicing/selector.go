package invoicing

import "hourbook/timesheet"

// Selection tracks the entry IDs a user has picked for invoice import.
// Toggling an already selected ID deselects it again.
type Selection struct {
	ids map[int64]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

// Toggle flips the selection state of id and reports whether the id is
// selected afterwards.
func (s *Selection) Toggle(id int64) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Selection) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected identifiers in unspecified order.
func (s *Selection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// UnbilledCandidates filters to finalized, billable, not-yet-invoiced
// entries, optionally scoped to one project. Unlike the weekly report this
// candidate list is not time-bounded: everything still owed is offered.
func UnbilledCandidates(entries []timesheet.Entry, project string) []timesheet.Entry {
	out := make([]timesheet.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Active() || !entry.Billable || entry.Billed() {
			continue
		}
		if _, ok := entry.Seconds(); !ok {
			continue
		}
		if project != "" && entry.Project != project {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// SelectForImport returns the subset of entries whose IDs appear in
// selectedIDs, preserving the original entry order. Repeated ids are
// deduplicated. No entry is mutated or marked billed here; invoice linkage
// happens only when the resulting draft is saved.
func SelectForImport(entries []timesheet.Entry, selectedIDs []int64) []timesheet.Entry {
	wanted := make(map[int64]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		wanted[id] = struct{}{}
	}

	out := make([]timesheet.Entry, 0, len(wanted))
	for _, entry := range entries {
		if _, ok := wanted[entry.ID]; ok {
			out = append(out, entry)
		}
	}
	return out
}

// TotalSelectedSeconds recomputes the running total from scratch on every
// call. Selection sets are human-scale (dozens at most), so correctness
// beats incremental bookkeeping.
func TotalSelectedSeconds(entries []timesheet.Entry, selection *Selection) int64 {
	if selection == nil {
		return 0
	}

	var total int64
	for _, entry := range entries {
		if !selection.Contains(entry.ID) {
			continue
		}
		if seconds, ok := entry.Seconds(); ok {
			total += seconds
		}
	}
	return total
}
