package teamuptest_test

import (
	"context"
	"fmt"

	"github.com/calwire/tucal/internal/teamup"
	"github.com/calwire/tucal/pkg/teamuptest"
)

// Example demonstrates how to use the mock server with the Teamup client.
func Example() {
	// Create mock server
	server := teamuptest.NewServer()
	defer server.Close()

	// Create a client pointing to the mock
	client := teamup.NewClient(server.Client(), teamup.Credentials{
		Token:       teamuptest.Token,
		CalendarKey: "ks73ad7816",
	}, server.URL)

	// Pre-populate an event
	server.AddEvent("ks73ad7816", map[string]any{
		"title":    "Team Meeting",
		"start_dt": "2024-03-05T09:30:00",
		"end_dt":   "2024-03-05T10:00:00",
	})

	// Use the client normally
	items, err := client.ListEvents(context.Background(), 0, teamup.ListEventsParams{
		StartDate: "2024-01-01",
	})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d events\n", len(items))
	// Output: Found 1 events
}

// Example_createEvent shows the full create flow, including the undo token
// the server attaches to mutating responses.
func Example_createEvent() {
	server := teamuptest.NewServer()
	defer server.Close()

	client := teamup.NewClient(server.Client(), teamup.Credentials{
		Token:       teamuptest.Token,
		CalendarKey: "ks73ad7816",
	}, server.URL)

	item, err := client.CreateEvent(context.Background(), 0, teamup.CreateEventParams{
		SubcalendarID: "5",
		Title:         "Test Event",
		Start:         "5.3.2024 9:30",
		End:           "5.3.2024 10:00",
	})
	if err != nil {
		panic(err)
	}

	event := item.Payload["event"].(map[string]any)
	fmt.Printf("Created event %s: %s\n", event["id"], event["title"])
	fmt.Printf("Undo token: %s\n", item.Payload["undo_id"])
	// Output:
	// Created event 1: Test Event
	// Undo token: undo-1
}
