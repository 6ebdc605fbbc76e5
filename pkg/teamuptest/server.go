package teamuptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Token is the API token the mock server accepts. Requests carrying any
// other Teamup-Token value are rejected with 401.
const Token = "test-token"

// Server is a mock Teamup API server for testing.
type Server struct {
	*httptest.Server
	mu           sync.RWMutex
	events       map[string]map[string]map[string]any // calendarKey -> eventID -> event
	subcalendars map[string]map[string]map[string]any // calendarKey -> subcalendarID -> subcalendar
	nextID       int
}

// NewServer creates a new mock Teamup API server.
func NewServer() *Server {
	s := &Server{
		events:       make(map[string]map[string]map[string]any),
		subcalendars: make(map[string]map[string]map[string]any),
		nextID:       1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.Server = httptest.NewServer(mux)
	return s
}

// handleRequest routes all requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Teamup-Token") != Token {
		writeJSONError(w, http.StatusUnauthorized, "invalid or missing Teamup-Token")
		return
	}

	// Parse URL: /{calendarKey}/{resource}[/{id}[/{sub}]]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		writeJSONError(w, http.StatusBadRequest, "expected at least calendarKey/resource")
		return
	}

	calendarKey := parts[0]
	resource := parts[1]
	rest := parts[2:]

	switch resource {
	case "events":
		s.handleEvents(w, r, calendarKey, rest)
	case "subcalendars":
		s.handleSubcalendars(w, r, calendarKey, rest)
	default:
		writeJSONError(w, http.StatusNotFound, "unsupported resource "+resource)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, calendarKey string, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			s.listEvents(w, r, calendarKey)
		case http.MethodPost:
			s.createEvent(w, r, calendarKey)
		default:
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case len(rest) == 1:
		eventID := rest[0]
		switch r.Method {
		case http.MethodGet:
			s.getEvent(w, calendarKey, eventID)
		case http.MethodPut:
			s.updateEvent(w, r, calendarKey, eventID)
		case http.MethodDelete:
			s.deleteEvent(w, calendarKey, eventID)
		default:
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case len(rest) == 2 && rest[0] == "undo" && r.Method == http.MethodPut:
		// Undo success is an empty object, per the real API.
		writeJSON(w, map[string]any{})
	case len(rest) == 2 && rest[1] == "aux" && r.Method == http.MethodGet:
		s.getEventAux(w, calendarKey, rest[0])
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid events path")
	}
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request, calendarKey string) {
	var event map[string]any
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event["id"] = strconv.Itoa(s.nextID)
	event["ts"] = time.Now().Unix()
	s.nextID++

	if s.events[calendarKey] == nil {
		s.events[calendarKey] = make(map[string]map[string]any)
	}
	s.events[calendarKey][event["id"].(string)] = event

	writeJSON(w, map[string]any{
		"event":   event,
		"undo_id": "undo-" + event["id"].(string),
	})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, calendarKey string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := r.URL.Query()
	startDate := query.Get("startDate")
	endDate := query.Get("endDate")
	search := query.Get("query")
	limitStr := query.Get("limit")
	modifiedSince := query.Get("modifiedSince")
	subcalendarIDs := query["subcalendarId[]"]

	var events []map[string]any
	for _, evt := range s.events[calendarKey] {
		if search != "" {
			title, _ := evt["title"].(string)
			if !strings.Contains(strings.ToLower(title), strings.ToLower(search)) {
				continue
			}
		} else {
			// Date-window filtering applies to plain listing only; string
			// comparison works because start_dt is ISO-shaped.
			start, _ := evt["start_dt"].(string)
			if startDate != "" && start != "" && datePrefix(start) < datePrefix(startDate) {
				continue
			}
			if endDate != "" && start != "" && datePrefix(start) > datePrefix(endDate) {
				continue
			}
		}
		if modifiedSince != "" {
			since, _ := strconv.ParseInt(modifiedSince, 10, 64)
			if tsOf(evt) < since {
				continue
			}
		}
		if len(subcalendarIDs) > 0 && !matchesSubcalendar(evt, subcalendarIDs) {
			continue
		}
		events = append(events, evt)
	}

	sort.Slice(events, func(i, j int) bool {
		si, _ := events[i]["start_dt"].(string)
		sj, _ := events[j]["start_dt"].(string)
		if si != sj {
			return si < sj
		}
		idI, _ := events[i]["id"].(string)
		idJ, _ := events[j]["id"].(string)
		return idI < idJ
	})

	// The real API honors limit only for search; the client caps plain
	// listings on its side.
	if search != "" && limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && len(events) > limit {
			events = events[:limit]
		}
	}

	if events == nil {
		events = []map[string]any{}
	}
	writeJSON(w, map[string]any{"events": events})
}

func (s *Server) getEvent(w http.ResponseWriter, calendarKey, eventID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event := s.events[calendarKey][eventID]
	if event == nil {
		writeJSONError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, map[string]any{"event": event})
}

func (s *Server) getEventAux(w http.ResponseWriter, calendarKey, eventID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.events[calendarKey][eventID] == nil {
		writeJSONError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, map[string]any{
		"comments": []any{},
		"signups":  []any{},
	})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request, calendarKey, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.events[calendarKey][eventID] == nil {
		writeJSONError(w, http.StatusNotFound, "event not found")
		return
	}

	var updated map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	updated["id"] = eventID
	updated["ts"] = time.Now().Unix()
	s.events[calendarKey][eventID] = updated

	writeJSON(w, map[string]any{
		"event":   updated,
		"undo_id": "undo-" + eventID,
	})
}

func (s *Server) deleteEvent(w http.ResponseWriter, calendarKey, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.events[calendarKey][eventID] == nil {
		writeJSONError(w, http.StatusNotFound, "event not found")
		return
	}
	delete(s.events[calendarKey], eventID)
	writeJSON(w, map[string]any{"undo_id": "undo-" + eventID})
}

func (s *Server) handleSubcalendars(w http.ResponseWriter, r *http.Request, calendarKey string, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			s.listSubcalendars(w, calendarKey)
		case http.MethodPost:
			s.createSubcalendar(w, r, calendarKey)
		default:
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case len(rest) == 1:
		id := rest[0]
		switch r.Method {
		case http.MethodGet:
			s.getSubcalendar(w, calendarKey, id)
		case http.MethodPut:
			s.updateSubcalendar(w, r, calendarKey, id)
		case http.MethodDelete:
			s.deleteSubcalendar(w, calendarKey, id)
		default:
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid subcalendars path")
	}
}

func (s *Server) listSubcalendars(w http.ResponseWriter, calendarKey string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subcalendars := make([]map[string]any, 0, len(s.subcalendars[calendarKey]))
	for _, sc := range s.subcalendars[calendarKey] {
		subcalendars = append(subcalendars, sc)
	}
	sort.Slice(subcalendars, func(i, j int) bool {
		return fmt.Sprint(subcalendars[i]["id"]) < fmt.Sprint(subcalendars[j]["id"])
	})
	writeJSON(w, map[string]any{"subcalendars": subcalendars})
}

func (s *Server) createSubcalendar(w http.ResponseWriter, r *http.Request, calendarKey string) {
	var sc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc["id"] = s.nextID
	s.nextID++

	if s.subcalendars[calendarKey] == nil {
		s.subcalendars[calendarKey] = make(map[string]map[string]any)
	}
	s.subcalendars[calendarKey][fmt.Sprint(sc["id"])] = sc

	writeJSON(w, map[string]any{"subcalendar": sc})
}

func (s *Server) getSubcalendar(w http.ResponseWriter, calendarKey, id string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc := s.subcalendars[calendarKey][id]
	if sc == nil {
		writeJSONError(w, http.StatusNotFound, "subcalendar not found")
		return
	}
	writeJSON(w, map[string]any{"subcalendar": sc})
}

func (s *Server) updateSubcalendar(w http.ResponseWriter, r *http.Request, calendarKey, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subcalendars[calendarKey][id] == nil {
		writeJSONError(w, http.StatusNotFound, "subcalendar not found")
		return
	}

	var updated map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	s.subcalendars[calendarKey][id] = updated
	writeJSON(w, map[string]any{"subcalendar": updated})
}

func (s *Server) deleteSubcalendar(w http.ResponseWriter, calendarKey, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subcalendars[calendarKey][id] == nil {
		writeJSONError(w, http.StatusNotFound, "subcalendar not found")
		return
	}
	delete(s.subcalendars[calendarKey], id)
	writeJSON(w, map[string]any{})
}

// Reset clears all stored state.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]map[string]map[string]any)
	s.subcalendars = make(map[string]map[string]map[string]any)
	s.nextID = 1
}

// AddEvent adds a pre-configured event to the server (for test setup) and
// returns its ID.
func (s *Server) AddEvent(calendarKey string, event map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := event["id"].(string)
	if id == "" {
		id = strconv.Itoa(s.nextID)
		s.nextID++
		event["id"] = id
	}
	if _, ok := event["ts"]; !ok {
		event["ts"] = time.Now().Unix()
	}

	if s.events[calendarKey] == nil {
		s.events[calendarKey] = make(map[string]map[string]any)
	}
	s.events[calendarKey][id] = event
	return id
}

// AddSubcalendar adds a pre-configured subcalendar and returns its ID.
func (s *Server) AddSubcalendar(calendarKey string, sc map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := sc["id"]; !ok {
		sc["id"] = s.nextID
		s.nextID++
	}
	id := fmt.Sprint(sc["id"])

	if s.subcalendars[calendarKey] == nil {
		s.subcalendars[calendarKey] = make(map[string]map[string]any)
	}
	s.subcalendars[calendarKey][id] = sc
	return id
}

// Events returns all events for a calendar (for test assertions).
func (s *Server) Events(calendarKey string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []map[string]any
	for _, evt := range s.events[calendarKey] {
		events = append(events, evt)
	}
	return events
}

// Subcalendars returns all subcalendars for a calendar (for test assertions).
func (s *Server) Subcalendars(calendarKey string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subcalendars []map[string]any
	for _, sc := range s.subcalendars[calendarKey] {
		subcalendars = append(subcalendars, sc)
	}
	return subcalendars
}

func matchesSubcalendar(event map[string]any, ids []string) bool {
	want := fmt.Sprint(event["subcalendar_id"])
	// JSON numbers decode as float64; normalize "3" vs "3.000000".
	if f, ok := event["subcalendar_id"].(float64); ok {
		want = strconv.FormatInt(int64(f), 10)
	}
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func datePrefix(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func tsOf(event map[string]any) int64 {
	switch v := event["ts"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"title": http.StatusText(status), "message": msg},
	})
}
