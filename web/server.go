// Package web serves a localhost-only single-user UI; it intentionally has
// no auth/CSRF protection in this mode.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hourbook/config"
	"hourbook/invoicing"
	"hourbook/report"
	"hourbook/storage"
	"hourbook/timesheet"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	store *storage.SQLiteStore
	cfg   config.Config
	mux   *http.ServeMux
}

type entryMutationRequest struct {
	Owner       string   `json:"owner"`
	Project     string   `json:"project"`
	Task        string   `json:"task"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Billable    bool     `json:"billable"`
	HourlyRate  *float64 `json:"hourlyRate"`
}

type timerStartRequest struct {
	Owner       string   `json:"owner"`
	Project     string   `json:"project"`
	Task        string   `json:"task"`
	Description string   `json:"description"`
	Billable    bool     `json:"billable"`
	HourlyRate  *float64 `json:"hourlyRate"`
}

type timerStopRequest struct {
	Owner string `json:"owner"`
}

type unbilledResponse struct {
	Candidates   []entryView `json:"candidates"`
	TotalSeconds int64       `json:"totalSeconds"`
	TotalRevenue float64     `json:"totalRevenue"`
}

type draftRequest struct {
	Number   string  `json:"number"`
	EntryIDs []int64 `json:"entryIds"`
	Owner    string  `json:"owner"`
	Project  string  `json:"project"`
}

type draftResponse struct {
	InvoiceID     string          `json:"invoiceId"`
	Draft         invoicing.Draft `json:"draft"`
	EntriesLinked int             `json:"entriesLinked"`
}

func NewServer(store *storage.SQLiteStore, cfg config.Config) http.Handler {
	server := &Server{store: store, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("GET /dashboard", server.handleDashboard)
	mux.HandleFunc("GET /api/report/weekly", server.handleAPIWeeklyReport)
	mux.HandleFunc("GET /api/unbilled", server.handleAPIUnbilled)
	mux.HandleFunc("POST /api/entries", server.handleAPIEntryCreate)
	mux.HandleFunc("PATCH /api/entries/{id}", server.handleAPIEntryPatch)
	mux.HandleFunc("DELETE /api/entries/{id}", server.handleAPIEntryDelete)
	mux.HandleFunc("POST /api/timer/start", server.handleAPITimerStart)
	mux.HandleFunc("POST /api/timer/stop", server.handleAPITimerStop)
	mux.HandleFunc("POST /api/invoices/draft", server.handleAPIInvoiceDraft)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := s.resolveOwner(r.URL.Query().Get("owner"))
	now, err := resolveNow(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	rep := s.weeklyReport(owner, now)
	view := BuildDashboardView(rep, owner, now, s.cfg.Defaults.Currency)
	if err := renderTemplate(w, "dashboard.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIWeeklyReport(w http.ResponseWriter, r *http.Request) {
	owner := s.resolveOwner(r.URL.Query().Get("owner"))
	now, err := resolveNow(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.weeklyReport(owner, now))
}

// weeklyReport loads the trailing fortnight and aggregates it. A failed
// fetch degrades to a zeroed report: this is a non-critical reporting
// surface and must never error out toward the page.
func (s *Server) weeklyReport(owner string, now time.Time) report.WeeklyReport {
	since := now.AddDate(0, 0, -14)
	entries, err := s.store.ListEntries(storage.Scope{Owner: owner, Since: since})
	if err != nil {
		log.Printf("weekly report: list entries for %s failed: %v", owner, err)
		entries = nil
	}
	return report.ComputeWeeklyStats(entries, now)
}

func (s *Server) handleAPIUnbilled(w http.ResponseWriter, r *http.Request) {
	owner := s.resolveOwner(r.URL.Query().Get("owner"))
	project := strings.TrimSpace(r.URL.Query().Get("project"))

	// Candidate fetch failures degrade to an empty list so the import
	// dialog stays dismissible instead of crashing the page.
	entries, err := s.store.ListEntries(storage.Scope{Owner: owner, Project: project})
	if err != nil {
		log.Printf("unbilled candidates: list entries for %s failed: %v", owner, err)
		writeJSON(w, http.StatusOK, unbilledResponse{Candidates: []entryView{}})
		return
	}

	candidates := invoicing.UnbilledCandidates(entries, project)
	var totalSeconds int64
	for _, entry := range candidates {
		if seconds, ok := entry.Seconds(); ok {
			totalSeconds += seconds
		}
	}

	writeJSON(w, http.StatusOK, unbilledResponse{
		Candidates:   entriesToViews(candidates),
		TotalSeconds: totalSeconds,
		TotalRevenue: report.ComputeUnbilledTotal(entries, time.Now(), 0),
	})
}

func (s *Server) handleAPIEntryCreate(w http.ResponseWriter, r *http.Request) {
	var body entryMutationRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.buildEntryFromMutation(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.store.InsertEntry(entry)
	if err != nil {
		http.Error(w, fmt.Sprintf("insert entry: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleAPIEntryPatch(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	existing, found, err := s.store.GetEntryByID(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("get entry by id: %v", err), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	}

	var body entryMutationRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.buildEntryFromMutation(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry.ID = existing.ID
	entry.Owner = existing.Owner

	if err := s.store.UpdateEntry(entry); err != nil {
		switch {
		case errors.Is(err, storage.ErrEntryNotFound):
			http.Error(w, "entry not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrEntryBilled):
			http.Error(w, "entry is already invoiced", http.StatusConflict)
		default:
			http.Error(w, fmt.Sprintf("update entry: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIEntryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.DeleteEntry(id)
	if err != nil {
		if errors.Is(err, storage.ErrEntryBilled) {
			http.Error(w, "entry is already invoiced", http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("delete entry: %v", err), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPITimerStart(w http.ResponseWriter, r *http.Request) {
	var body timerStartRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rate := body.HourlyRate
	if rate == nil {
		resolved := s.cfg.RateForProject(body.Project)
		rate = &resolved
	}

	id, err := s.store.StartEntry(timesheet.Entry{
		Owner:       s.resolveOwner(body.Owner),
		Project:     strings.TrimSpace(body.Project),
		Task:        strings.TrimSpace(body.Task),
		Description: strings.TrimSpace(body.Description),
		StartTime:   time.Now(),
		Billable:    body.Billable,
		HourlyRate:  rate,
	})
	if err != nil {
		if errors.Is(err, storage.ErrTimerRunning) {
			http.Error(w, "a timer is already running", http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("start timer: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleAPITimerStop(w http.ResponseWriter, r *http.Request) {
	var body timerStopRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	owner := s.resolveOwner(body.Owner)
	active, running, err := s.store.ActiveEntry(owner)
	if err != nil {
		http.Error(w, fmt.Sprintf("find active entry: %v", err), http.StatusInternalServerError)
		return
	}
	if !running {
		http.Error(w, "no timer is running", http.StatusNotFound)
		return
	}

	if err := s.store.StopEntry(active.ID, time.Now()); err != nil {
		http.Error(w, fmt.Sprintf("stop timer: %v", err), http.StatusInternalServerError)
		return
	}

	stopped, _, err := s.store.GetEntryByID(active.ID)
	if err != nil {
		http.Error(w, fmt.Sprintf("reload stopped entry: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entryToView(stopped))
}

func (s *Server) handleAPIInvoiceDraft(w http.ResponseWriter, r *http.Request) {
	var body draftRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	number := strings.TrimSpace(body.Number)
	if number == "" {
		http.Error(w, "invoice number is required", http.StatusBadRequest)
		return
	}
	if len(body.EntryIDs) == 0 {
		http.Error(w, "at least one entry id is required", http.StatusBadRequest)
		return
	}

	owner := s.resolveOwner(body.Owner)
	entries, err := s.store.ListEntries(storage.Scope{Owner: owner, Project: strings.TrimSpace(body.Project)})
	if err != nil {
		http.Error(w, fmt.Sprintf("list entries: %v", err), http.StatusInternalServerError)
		return
	}

	candidates := invoicing.UnbilledCandidates(entries, strings.TrimSpace(body.Project))
	selected := invoicing.SelectForImport(candidates, body.EntryIDs)
	if len(selected) == 0 {
		http.Error(w, "no unbilled entries match the selection", http.StatusBadRequest)
		return
	}

	draft := invoicing.BuildDraft(number, selected)
	invoiceID := "inv_" + number

	selectedIDs := make([]int64, 0, len(selected))
	for _, entry := range selected {
		selectedIDs = append(selectedIDs, entry.ID)
	}

	linked, err := s.store.SaveInvoiceDraft(invoiceID, number, selectedIDs)
	if err != nil {
		http.Error(w, fmt.Sprintf("save invoice draft: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, draftResponse{
		InvoiceID:     invoiceID,
		Draft:         draft,
		EntriesLinked: linked,
	})
}

func (s *Server) resolveOwner(value string) string {
	owner := strings.TrimSpace(value)
	if owner == "" {
		return s.cfg.Defaults.Owner
	}
	return owner
}

func (s *Server) buildEntryFromMutation(body entryMutationRequest) (timesheet.Entry, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(body.Start))
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("invalid start time (expected RFC3339)")
	}

	entry := timesheet.Entry{
		Owner:       s.resolveOwner(body.Owner),
		Project:     strings.TrimSpace(body.Project),
		Task:        strings.TrimSpace(body.Task),
		Description: strings.TrimSpace(body.Description),
		StartTime:   start,
		Billable:    body.Billable,
		HourlyRate:  body.HourlyRate,
	}

	if strings.TrimSpace(body.End) != "" {
		end, err := time.Parse(time.RFC3339, strings.TrimSpace(body.End))
		if err != nil {
			return timesheet.Entry{}, fmt.Errorf("invalid end time (expected RFC3339)")
		}
		if !end.After(start) {
			return timesheet.Entry{}, fmt.Errorf("end time must be after start time")
		}
		entry.EndTime = &end
	}

	if entry.HourlyRate != nil && *entry.HourlyRate < 0 {
		return timesheet.Entry{}, fmt.Errorf("hourly rate must be >= 0")
	}

	return entry, nil
}

func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func resolveNow(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Now(), nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", trimmed, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be > 0")
	}
	return parsed, nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
