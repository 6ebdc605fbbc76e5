package teamup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the production Teamup API base URL.
const DefaultEndpoint = "https://api.teamup.com"

// DefaultLimit caps how many records a listing operation emits when the
// caller does not say otherwise.
const DefaultLimit = 50

// changedEventsWindow is how far back the modified-events feed reaches.
// The API rejects older cutoffs, so the client validates before sending.
const changedEventsWindow = 30 * 24 * time.Hour

// Client issues requests against the Teamup Calendar API for one calendar.
//
// Every component behind it is a pure function of its inputs; the client
// holds no cross-call state beyond the credential and the transport, so a
// Client is safe for concurrent use if its http.Client is.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials

	// Now supplies the current time for default date filters and the
	// changed-events cutoff. Injected so tests stay deterministic.
	Now func() time.Time

	// Location, when non-nil, switches datetime normalization to the
	// offset-qualified mode for day-first and fallback inputs.
	Location *time.Location
}

// NewClient creates a Teamup API client.
// Optionally accepts an endpoint URL for testing with mock servers.
func NewClient(httpClient *http.Client, creds Credentials, endpoint ...string) *Client {
	base := DefaultEndpoint
	if len(endpoint) > 0 && endpoint[0] != "" {
		base = endpoint[0]
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		creds:      creds,
		Now:        time.Now,
	}
}

// CreateEventParams are the inputs for a new event. Extra carries arbitrary
// passthrough fields and wins over the named inputs key-by-key.
type CreateEventParams struct {
	SubcalendarID string
	Title         string
	Start         string
	End           string
	Extra         Fields
}

// CreateEvent creates an event and passes the API response through,
// including any undo token the server attached.
func (c *Client) CreateEvent(ctx context.Context, idx int, p CreateEventParams) (OutputItem, error) {
	body, err := CreateEventBody(p.SubcalendarID, p.Title, p.Start, p.End, p.Extra, c.Location)
	if err != nil {
		return OutputItem{}, err
	}

	resp, err := c.do(ctx, "create event", "", Request{Method: http.MethodPost, Path: "events", Body: body})
	if err != nil {
		return OutputItem{}, err
	}
	return OutputItem{Payload: resp, SourceIndex: idx}, nil
}

// UpdateEventParams describe a partial update. Update and Extra are merged
// over the fetched record, Update winning over Extra winning over existing.
type UpdateEventParams struct {
	EventID string
	Redit   string
	Update  Fields
	Extra   Fields
}

// UpdateEvent fetches the current record, merges the partial update over
// it, and writes the full record back. Redit scopes the write for
// recurring series and passes through verbatim.
func (c *Client) UpdateEvent(ctx context.Context, idx int, p UpdateEventParams) (OutputItem, error) {
	if p.EventID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "update event", Field: "event ID"}
	}

	existing, err := c.fetchEvent(ctx, p.EventID)
	if err != nil {
		return OutputItem{}, err
	}

	body, err := UpdateEventBody(p.Update, p.Extra, existing, c.Location)
	if err != nil {
		return OutputItem{}, err
	}

	req := withRedit(Request{
		Method: http.MethodPut,
		Path:   "events/" + url.PathEscape(p.EventID),
		Body:   body,
	}, p.Redit)

	resp, err := c.do(ctx, "update event", p.EventID, req)
	if err != nil {
		return OutputItem{}, err
	}
	return OutputItem{Payload: resp, SourceIndex: idx}, nil
}

// fetchEvent reads the full current record ahead of an update. The write is
// PUT-style, so the merge needs a base record bearing an identifier.
func (c *Client) fetchEvent(ctx context.Context, eventID string) (Fields, error) {
	resp, err := c.do(ctx, "fetch event for update", eventID, Request{
		Method: http.MethodGet,
		Path:   "events/" + url.PathEscape(eventID),
	})
	if err != nil {
		return nil, err
	}

	item, err := ProjectOne(resp, "event", 0)
	if err != nil {
		var missing *MissingEnvelopeError
		if errors.As(err, &missing) {
			return nil, &MissingBaseRecordError{Resource: "event", ID: eventID}
		}
		return nil, err
	}
	return item.Payload, nil
}

// DeleteEvent removes an event. Redit scopes the deletion for recurring
// series.
func (c *Client) DeleteEvent(ctx context.Context, idx int, eventID, redit string) (OutputItem, error) {
	if eventID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "delete event", Field: "event ID"}
	}

	req := withRedit(Request{
		Method: http.MethodDelete,
		Path:   "events/" + url.PathEscape(eventID),
	}, redit)

	resp, err := c.do(ctx, "delete event", eventID, req)
	if err != nil {
		return OutputItem{}, err
	}
	return OutputItem{Payload: resp, SourceIndex: idx}, nil
}

// GetEvent fetches a single event.
func (c *Client) GetEvent(ctx context.Context, idx int, eventID string) (OutputItem, error) {
	if eventID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "get event", Field: "event ID"}
	}

	resp, err := c.do(ctx, "get event", eventID, Request{
		Method: http.MethodGet,
		Path:   "events/" + url.PathEscape(eventID),
	})
	if err != nil {
		return OutputItem{}, err
	}
	return ProjectOne(resp, "event", idx)
}

// GetEventAux fetches the auxiliary info attached to an event. The aux
// endpoint responds without an envelope, so the body passes through.
func (c *Client) GetEventAux(ctx context.Context, idx int, eventID string) (OutputItem, error) {
	if eventID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "get event auxiliary info", Field: "event ID"}
	}

	resp, err := c.do(ctx, "get event auxiliary info", eventID, Request{
		Method: http.MethodGet,
		Path:   "events/" + url.PathEscape(eventID) + "/aux",
	})
	if err != nil {
		return OutputItem{}, err
	}
	return OutputItem{Payload: resp, SourceIndex: idx}, nil
}

// ListEventsParams filter the event listing. Zero-value Limit falls back to
// DefaultLimit; a missing StartDate defaults to today.
type ListEventsParams struct {
	StartDate      string
	EndDate        string
	SubcalendarIDs []string
	Limit          int
}

// ListEvents fetches events in a date window and emits one output item per
// event, capped client-side at the limit.
func (c *Client) ListEvents(ctx context.Context, idx int, p ListEventsParams) ([]OutputItem, error) {
	start, err := NormalizeDateTime(p.StartDate, nil)
	if err != nil {
		return nil, err
	}
	end, err := NormalizeDateTime(p.EndDate, nil)
	if err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}

	req := listEventsRequest(start, end, p.SubcalendarIDs, c.Now())
	resp, err := c.do(ctx, "list events", "", req)
	if err != nil {
		return nil, err
	}
	return ProjectMany(resp, "events", p.Limit, idx)
}

// SearchEventsParams drive keyword search. Query is required.
type SearchEventsParams struct {
	Query          string
	Limit          int
	StartDate      string
	SubcalendarIDs []string
}

// SearchEvents searches events by keyword.
func (c *Client) SearchEvents(ctx context.Context, idx int, p SearchEventsParams) ([]OutputItem, error) {
	if p.Query == "" {
		return nil, &RequiredFieldError{Op: "search events", Field: "search query"}
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	start, err := NormalizeDateTime(p.StartDate, nil)
	if err != nil {
		return nil, err
	}

	req := searchEventsRequest(p.Query, p.Limit, start, p.SubcalendarIDs)
	resp, err := c.do(ctx, "search events", p.Query, req)
	if err != nil {
		return nil, err
	}
	return ProjectMany(resp, "events", p.Limit, idx)
}

// ChangedEvents fetches events modified since the given instant. The API
// only keeps 30 days of change history, so older cutoffs are rejected here
// before any request is sent.
func (c *Client) ChangedEvents(ctx context.Context, idx int, modifiedSince string) ([]OutputItem, error) {
	if modifiedSince == "" {
		return nil, &RequiredFieldError{Op: "get changed events", Field: "modified since date"}
	}

	since, err := parseInstant(modifiedSince)
	if err != nil {
		return nil, err
	}
	if since.Before(c.Now().Add(-changedEventsWindow)) {
		return nil, &StaleCutoffError{Cutoff: since}
	}

	resp, err := c.do(ctx, "get changed events", "", changedEventsRequest(since))
	if err != nil {
		return nil, err
	}
	return ProjectMany(resp, "events", 0, idx)
}

// UndoEvent reverses a prior mutating action identified by its undo token.
func (c *Client) UndoEvent(ctx context.Context, idx int, undoID string) (OutputItem, error) {
	if undoID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "undo event action", Field: "undo ID"}
	}

	resp, err := c.do(ctx, "undo event action", undoID, Request{
		Method: http.MethodPut,
		Path:   "events/undo/" + url.PathEscape(undoID),
	})
	if err != nil {
		return OutputItem{}, err
	}
	return ProjectUndo(resp, undoID, idx), nil
}

// ListSubcalendars fetches all subcalendars of the calendar.
func (c *Client) ListSubcalendars(ctx context.Context, idx int) ([]OutputItem, error) {
	resp, err := c.do(ctx, "list subcalendars", "", Request{Method: http.MethodGet, Path: "subcalendars"})
	if err != nil {
		return nil, err
	}
	return ProjectMany(resp, "subcalendars", 0, idx)
}

// GetSubcalendar fetches a single subcalendar.
func (c *Client) GetSubcalendar(ctx context.Context, idx int, subcalendarID string) (OutputItem, error) {
	if subcalendarID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "get subcalendar", Field: "subcalendar ID"}
	}

	resp, err := c.do(ctx, "get subcalendar", subcalendarID, Request{
		Method: http.MethodGet,
		Path:   "subcalendars/" + url.PathEscape(subcalendarID),
	})
	if err != nil {
		return OutputItem{}, err
	}
	return ProjectOne(resp, "subcalendar", idx)
}

// CreateSubcalendarParams are the inputs for a new subcalendar.
type CreateSubcalendarParams struct {
	Name    string
	Color   int
	Active  bool
	Overlap bool
}

// CreateSubcalendar creates a subcalendar and unwraps the created record.
func (c *Client) CreateSubcalendar(ctx context.Context, idx int, p CreateSubcalendarParams) (OutputItem, error) {
	resp, err := c.do(ctx, "create subcalendar", p.Name, Request{
		Method: http.MethodPost,
		Path:   "subcalendars",
		Body:   CreateSubcalendarBody(p.Name, p.Color, p.Active, p.Overlap),
	})
	if err != nil {
		return OutputItem{}, err
	}
	return ProjectOne(resp, "subcalendar", idx)
}

// UpdateSubcalendar fetches the current record, merges the partial update
// over it, and writes the full record back.
func (c *Client) UpdateSubcalendar(ctx context.Context, idx int, subcalendarID string, update Fields) (OutputItem, error) {
	if subcalendarID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "update subcalendar", Field: "subcalendar ID"}
	}

	existing, err := c.fetchSubcalendar(ctx, subcalendarID)
	if err != nil {
		return OutputItem{}, err
	}

	body, err := UpdateSubcalendarBody(update, existing)
	if err != nil {
		return OutputItem{}, err
	}

	resp, err := c.do(ctx, "update subcalendar", subcalendarID, Request{
		Method: http.MethodPut,
		Path:   "subcalendars/" + url.PathEscape(subcalendarID),
		Body:   body,
	})
	if err != nil {
		return OutputItem{}, err
	}
	return ProjectOne(resp, "subcalendar", idx)
}

func (c *Client) fetchSubcalendar(ctx context.Context, subcalendarID string) (Fields, error) {
	resp, err := c.do(ctx, "fetch subcalendar for update", subcalendarID, Request{
		Method: http.MethodGet,
		Path:   "subcalendars/" + url.PathEscape(subcalendarID),
	})
	if err != nil {
		return nil, err
	}

	item, err := ProjectOne(resp, "subcalendar", 0)
	if err != nil {
		var missing *MissingEnvelopeError
		if errors.As(err, &missing) {
			return nil, &MissingBaseRecordError{Resource: "subcalendar", ID: subcalendarID}
		}
		return nil, err
	}
	return item.Payload, nil
}

// DeleteSubcalendar removes a subcalendar.
func (c *Client) DeleteSubcalendar(ctx context.Context, idx int, subcalendarID string) (OutputItem, error) {
	if subcalendarID == "" {
		return OutputItem{}, &RequiredFieldError{Op: "delete subcalendar", Field: "subcalendar ID"}
	}

	resp, err := c.do(ctx, "delete subcalendar", subcalendarID, Request{
		Method: http.MethodDelete,
		Path:   "subcalendars/" + url.PathEscape(subcalendarID),
	})
	if err != nil {
		return OutputItem{}, err
	}
	return OutputItem{Payload: resp, SourceIndex: idx}, nil
}

// do executes one round trip: compose the URL, attach the auth headers,
// send, and decode the JSON body. Any transport or status failure comes
// back as a *RequestError naming the operation and the entity.
func (c *Client) do(ctx context.Context, op, id string, req Request) (Fields, error) {
	var payload io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &RequestError{Op: op, ID: id, Err: fmt.Errorf("unable to encode request body: %w", err)}
		}
		payload = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(c.baseURL, c.creds.CalendarKey), payload)
	if err != nil {
		return nil, &RequestError{Op: op, ID: id, Err: err}
	}
	httpReq.Header.Set("Teamup-Token", c.creds.Token)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Op: op, ID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &RequestError{Op: op, ID: id, Err: fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet))}
	}

	var body Fields
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return Fields{}, nil
		}
		return nil, &RequestError{Op: op, ID: id, Err: fmt.Errorf("unable to decode response: %w", err)}
	}
	return body, nil
}

// instantLayouts are accepted for the changed-events cutoff.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &UnsupportedFormatError{Input: s}
}
