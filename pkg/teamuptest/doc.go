// Package teamuptest provides a mock Teamup Calendar API server for testing.
//
// The mock server implements a subset of the Teamup API event and subcalendar
// endpoints, allowing tests to run without a real calendar or network access.
//
// # Supported Operations
//
// The mock server supports the following Teamup API operations:
//
//   - Create Event: POST /{calendarKey}/events
//   - List Events: GET /{calendarKey}/events (with date window, keyword search,
//     modifiedSince, and subcalendarId[] filters)
//   - Get Event: GET /{calendarKey}/events/{eventId}
//   - Update Event: PUT /{calendarKey}/events/{eventId}
//   - Delete Event: DELETE /{calendarKey}/events/{eventId}
//   - Event Aux Info: GET /{calendarKey}/events/{eventId}/aux
//   - Undo: PUT /{calendarKey}/events/undo/{undoId}
//   - Subcalendar CRUD: /{calendarKey}/subcalendars[/{id}]
//
// # Basic Usage
//
//	// Create mock server
//	server := teamuptest.NewServer()
//	defer server.Close()
//
//	// Create a client pointing to the mock; teamuptest.Token is the only
//	// token the server accepts.
//	client := teamup.NewClient(server.Client(), teamup.Credentials{
//	    Token:       teamuptest.Token,
//	    CalendarKey: "ks73ad7816",
//	}, server.URL)
//
//	item, err := client.CreateEvent(ctx, 0, teamup.CreateEventParams{
//	    SubcalendarID: "5",
//	    Title:         "Team Meeting",
//	    Start:         "2024-03-05T09:30:00",
//	})
//
// # Test Helpers
//
// The server provides helper methods for test setup and assertions:
//
//	// Pre-populate records for testing
//	id := server.AddEvent("ks73ad7816", map[string]any{"title": "Existing"})
//	server.AddSubcalendar("ks73ad7816", map[string]any{"name": "Ops"})
//
//	// Read stored records for assertions
//	events := server.Events("ks73ad7816")
//
//	// Clear all data between tests
//	server.Reset()
//
// # Features
//
//   - Thread-safe: uses a mutex for concurrent access
//   - Token check: replies 401 unless the Teamup-Token header equals Token
//   - Envelopes: responses are wrapped the way the real API wraps them
//     ({"event": ...}, {"events": [...]}, {"subcalendar": ...})
//   - Undo tokens: mutating event responses carry an undo_id
//   - Multiple calendars: each calendar key keeps separate storage
//   - Automatic ID generation: assigns sequential IDs to new records
package teamuptest
