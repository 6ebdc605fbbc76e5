package teamup

import (
	"fmt"
	"strconv"
	"time"
)

// CreateEventBody shapes the POST body for a new event. The friendly inputs
// are normalized into the API's snake_case keys; extra is overlaid last and
// wins key-by-key, matching the merge precedence of update bodies.
func CreateEventBody(subcalendarID, title, start, end string, extra Fields, loc *time.Location) (Fields, error) {
	id, err := strconv.Atoi(subcalendarID)
	if err != nil {
		return nil, &InvalidIdentifierError{Field: "subcalendar ID", Value: subcalendarID}
	}

	startDT, err := NormalizeDateTime(start, loc)
	if err != nil {
		return nil, err
	}
	endDT, err := NormalizeDateTime(end, loc)
	if err != nil {
		return nil, err
	}

	body := Fields{
		"subcalendar_id": id,
		"title":          title,
		"start_dt":       startDT,
		"end_dt":         endDT,
	}
	for k, v := range extra {
		body[k] = v
	}
	if rule, ok := body["rrule"].(string); ok {
		body["rrule"] = NormalizeRecurrence(rule)
	}
	return body, nil
}

// UpdateEventBody merges a partial update against the previously fetched
// full record. The merge is right-biased: existing values are overlaid by
// extra, then by update, later sources winning key-by-key. Friendly-named
// keys present after the overlay are renamed and normalized into API keys.
//
// The Teamup update endpoint is PUT-style and wants the full record back,
// which is why the fetched record is the base rather than an empty map.
func UpdateEventBody(update, extra, existing Fields, loc *time.Location) (Fields, error) {
	if !hasID(existing) {
		return nil, &MissingBaseRecordError{Resource: "event", ID: stringID(existing)}
	}

	body := existing.clone()
	for k, v := range extra {
		body[k] = v
	}
	for k, v := range update {
		body[k] = v
	}

	if raw, ok := body["startDateTime"]; ok {
		dt, err := NormalizeDateTime(fmt.Sprint(raw), loc)
		if err != nil {
			return nil, err
		}
		body["start_dt"] = dt
		delete(body, "startDateTime")
	}
	if raw, ok := body["endDateTime"]; ok {
		dt, err := NormalizeDateTime(fmt.Sprint(raw), loc)
		if err != nil {
			return nil, err
		}
		body["end_dt"] = dt
		delete(body, "endDateTime")
	}
	if raw, ok := body["subcalendarId"]; ok {
		s := fmt.Sprint(raw)
		id, err := strconv.Atoi(s)
		if err != nil {
			return nil, &InvalidIdentifierError{Field: "subcalendar ID", Value: s}
		}
		body["subcalendar_id"] = id
		delete(body, "subcalendarId")
	}
	if rule, ok := body["rrule"].(string); ok {
		body["rrule"] = NormalizeRecurrence(rule)
	}

	return body, nil
}

// CreateSubcalendarBody shapes the POST body for a new subcalendar. The
// type constant 0 is the only kind the API accepts for user-created lanes.
func CreateSubcalendarBody(name string, color int, active, overlap bool) Fields {
	return Fields{
		"name":    name,
		"color":   color,
		"active":  active,
		"overlap": overlap,
		"type":    0,
	}
}

// UpdateSubcalendarBody merges partial subcalendar updates against the
// fetched record, update values winning key-by-key.
func UpdateSubcalendarBody(update, existing Fields) (Fields, error) {
	if !hasID(existing) {
		return nil, &MissingBaseRecordError{Resource: "subcalendar", ID: stringID(existing)}
	}
	body := existing.clone()
	for k, v := range update {
		body[k] = v
	}
	return body, nil
}

// hasID reports whether a fetched record carries a usable identifier. The
// API returns event IDs as strings and subcalendar IDs as numbers.
func hasID(record Fields) bool {
	v, ok := record["id"]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) != ""
}

func stringID(record Fields) string {
	if v, ok := record["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
