package teamup

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Param is one query parameter. Requests keep parameters as an ordered
// slice because the Teamup API conventionally receives filters in a fixed
// order and url.Values would alphabetize them.
type Param struct {
	Key   string
	Value string
}

// Request is the normalized shape of one API call before dispatch.
type Request struct {
	Method string
	Path   string // relative to {base}/{calendarKey}, e.g. "events/123"
	Params []Param
	Body   Fields
}

// URL composes the absolute request URL. Every parameter value is
// percent-encoded; keys are emitted in insertion order.
func (r Request) URL(base, calendarKey string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(calendarKey))
	b.WriteByte('/')
	b.WriteString(r.Path)

	for i, p := range r.Params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// listEventsRequest builds the GET for event listing. A missing start date
// defaults to today's date from the injected clock; subcalendar filters are
// repeated subcalendarId[] parameters.
func listEventsRequest(startDate, endDate string, subcalendarIDs []string, today time.Time) Request {
	req := Request{Method: "GET", Path: "events"}

	if startDate != "" {
		req.Params = append(req.Params, Param{"startDate", startDate})
	} else {
		req.Params = append(req.Params, Param{"startDate", today.Format("2006-01-02")})
	}
	if endDate != "" {
		req.Params = append(req.Params, Param{"endDate", endDate})
	}
	for _, id := range subcalendarIDs {
		req.Params = append(req.Params, Param{"subcalendarId[]", id})
	}
	return req
}

// searchEventsRequest builds the GET for keyword search. The start date, if
// given, is truncated to its date component.
func searchEventsRequest(query string, limit int, startDate string, subcalendarIDs []string) Request {
	req := Request{Method: "GET", Path: "events"}
	req.Params = append(req.Params,
		Param{"query", query},
		Param{"limit", strconv.Itoa(limit)},
	)
	if startDate != "" {
		req.Params = append(req.Params, Param{"startDate", DateOnly(startDate)})
	}
	for _, id := range subcalendarIDs {
		req.Params = append(req.Params, Param{"subcalendarId[]", id})
	}
	return req
}

// changedEventsRequest builds the GET for the modified-events feed.
func changedEventsRequest(modifiedSince time.Time) Request {
	return Request{
		Method: "GET",
		Path:   "events",
		Params: []Param{{"modifiedSince", strconv.FormatInt(modifiedSince.Unix(), 10)}},
	}
}

// withRedit appends the recurring-series scope parameter. The accepted
// values are a remote-API contract and pass through verbatim.
func withRedit(req Request, redit string) Request {
	if redit != "" {
		req.Params = append(req.Params, Param{"redit", redit})
	}
	return req
}
