package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/calwire/tucal/internal/config"
	"github.com/calwire/tucal/internal/teamup"
)

func main() {
	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "tucal",
		Usage: "manage Teamup calendar events and subcalendars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to config file (default ~/.config/tucal/config.yaml)",
			},
		},
		Commands: []*cli.Command{
			eventsCommand(),
			subcalendarsCommand(),
			configCommand(),
		},
	}
}

// newClient loads configuration and builds the API client. Authentication
// is a pre-resolved token; there is no interactive flow.
func newClient(cmd *cli.Command) (*teamup.Client, error) {
	path := cmd.String("config")
	if path == "" {
		defaultPath, err := config.GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := teamup.NewClient(&http.Client{Timeout: 30 * time.Second}, teamup.Credentials{
		Token:       cfg.Token,
		CalendarKey: cfg.CalendarKey,
	}, cfg.APIEndpoint)

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		client.Location = loc
	}

	return client, nil
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "work with calendar events",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list events in a date window",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "window start date (defaults to today)"},
					&cli.StringFlag{Name: "end", Usage: "window end date"},
					&cli.StringSliceFlag{Name: "subcalendar", Usage: "restrict to subcalendar ID (repeatable)"},
					&cli.IntFlag{Name: "limit", Usage: "maximum number of events", Value: teamup.DefaultLimit},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					items, err := client.ListEvents(ctx, 0, teamup.ListEventsParams{
						StartDate:      cmd.String("start"),
						EndDate:        cmd.String("end"),
						SubcalendarIDs: cmd.StringSlice("subcalendar"),
						Limit:          int(cmd.Int("limit")),
					})
					if err != nil {
						return err
					}
					return printItems(items)
				},
			},
			{
				Name:  "search",
				Usage: "search events by keyword",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Usage: "search keyword", Required: true},
					&cli.IntFlag{Name: "limit", Usage: "maximum number of events", Value: teamup.DefaultLimit},
					&cli.StringFlag{Name: "start", Usage: "only events starting on or after this date"},
					&cli.StringSliceFlag{Name: "subcalendar", Usage: "restrict to subcalendar ID (repeatable)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					items, err := client.SearchEvents(ctx, 0, teamup.SearchEventsParams{
						Query:          cmd.String("query"),
						Limit:          int(cmd.Int("limit")),
						StartDate:      cmd.String("start"),
						SubcalendarIDs: cmd.StringSlice("subcalendar"),
					})
					if err != nil {
						return err
					}
					return printItems(items)
				},
			},
			{
				Name:      "get",
				Usage:     "fetch a single event",
				ArgsUsage: "<event-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					item, err := client.GetEvent(ctx, 0, cmd.Args().First())
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
			{
				Name:      "aux",
				Usage:     "fetch auxiliary info (comments, signups) for an event",
				ArgsUsage: "<event-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					item, err := client.GetEventAux(ctx, 0, cmd.Args().First())
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
			{
				Name:  "changed",
				Usage: "list events modified since a given time (up to 30 days back)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "since", Usage: "modified-since date/time", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					items, err := client.ChangedEvents(ctx, 0, cmd.String("since"))
					if err != nil {
						return err
					}
					return printItems(items)
				},
			},
			{
				Name:  "create",
				Usage: "create an event",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subcalendar", Usage: "subcalendar ID", Required: true},
					&cli.StringFlag{Name: "title", Usage: "event title", Required: true},
					&cli.StringFlag{Name: "start", Usage: "start date/time", Required: true},
					&cli.StringFlag{Name: "end", Usage: "end date/time", Required: true},
					&cli.StringFlag{Name: "rrule", Usage: "recurrence rule (e.g. FREQ=WEEKLY;BYDAY=MO)"},
					&cli.StringSliceFlag{Name: "field", Usage: "additional field as key=value (repeatable)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					extra, err := parseFields(cmd.StringSlice("field"))
					if err != nil {
						return err
					}
					if rule := cmd.String("rrule"); rule != "" {
						if err := teamup.ValidateRecurrence(rule); err != nil {
							return err
						}
						extra["rrule"] = rule
					}
					item, err := client.CreateEvent(ctx, 0, teamup.CreateEventParams{
						SubcalendarID: cmd.String("subcalendar"),
						Title:         cmd.String("title"),
						Start:         cmd.String("start"),
						End:           cmd.String("end"),
						Extra:         extra,
					})
					if err != nil {
						return err
					}
					slog.Info("event created", "title", cmd.String("title"))
					return printItem(item)
				},
			},
			{
				Name:      "update",
				Usage:     "update an event (partial; unset fields keep their values)",
				ArgsUsage: "<event-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "new title"},
					&cli.StringFlag{Name: "start", Usage: "new start date/time"},
					&cli.StringFlag{Name: "end", Usage: "new end date/time"},
					&cli.StringFlag{Name: "subcalendar", Usage: "new subcalendar ID"},
					&cli.StringFlag{Name: "rrule", Usage: "new recurrence rule"},
					&cli.StringFlag{Name: "redit", Usage: "recurring-series scope (passed through to the API)"},
					&cli.StringSliceFlag{Name: "field", Usage: "additional field as key=value (repeatable)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					extra, err := parseFields(cmd.StringSlice("field"))
					if err != nil {
						return err
					}
					update := teamup.Fields{}
					if v := cmd.String("title"); v != "" {
						update["title"] = v
					}
					if v := cmd.String("start"); v != "" {
						update["startDateTime"] = v
					}
					if v := cmd.String("end"); v != "" {
						update["endDateTime"] = v
					}
					if v := cmd.String("subcalendar"); v != "" {
						update["subcalendarId"] = v
					}
					if v := cmd.String("rrule"); v != "" {
						if err := teamup.ValidateRecurrence(v); err != nil {
							return err
						}
						update["rrule"] = v
					}
					item, err := client.UpdateEvent(ctx, 0, teamup.UpdateEventParams{
						EventID: cmd.Args().First(),
						Redit:   cmd.String("redit"),
						Update:  update,
						Extra:   extra,
					})
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
			{
				Name:      "delete",
				Usage:     "delete an event",
				ArgsUsage: "<event-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "redit", Usage: "recurring-series scope (passed through to the API)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					item, err := client.DeleteEvent(ctx, 0, cmd.Args().First(), cmd.String("redit"))
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
			{
				Name:      "undo",
				Usage:     "undo a prior event action by its undo token",
				ArgsUsage: "<undo-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					item, err := client.UndoEvent(ctx, 0, cmd.Args().First())
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
		},
	}
}

func subcalendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "subcalendars",
		Usage: "work with subcalendars",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all subcalendars",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					items, err := client.ListSubcalendars(ctx, 0)
					if err != nil {
						return err
					}
					return printItems(items)
				},
			},
			{
				Name:      "get",
				Usage:     "fetch a single subcalendar",
				ArgsUsage: "<subcalendar-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					item, err := client.GetSubcalendar(ctx, 0, cmd.Args().First())
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
			{
				Name:  "create",
				Usage: "create a subcalendar",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "subcalendar name", Required: true},
					&cli.IntFlag{Name: "color", Usage: "color number", Value: 1},
					&cli.BoolFlag{Name: "active", Usage: "subcalendar is active", Value: true},
					&cli.BoolFlag{Name: "overlap", Usage: "allow overlapping events", Value: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					item, err := client.CreateSubcalendar(ctx, 0, teamup.CreateSubcalendarParams{
						Name:    cmd.String("name"),
						Color:   int(cmd.Int("color")),
						Active:  cmd.Bool("active"),
						Overlap: cmd.Bool("overlap"),
					})
					if err != nil {
						return err
					}
					slog.Info("subcalendar created", "name", cmd.String("name"))
					return printItem(item)
				},
			},
			{
				Name:      "update",
				Usage:     "update a subcalendar (partial; unset fields keep their values)",
				ArgsUsage: "<subcalendar-id>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "field", Usage: "field to change as key=value (repeatable)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					update, err := parseFields(cmd.StringSlice("field"))
					if err != nil {
						return err
					}
					item, err := client.UpdateSubcalendar(ctx, 0, cmd.Args().First(), update)
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a subcalendar",
				ArgsUsage: "<subcalendar-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := newClient(cmd)
					if err != nil {
						return err
					}
					item, err := client.DeleteSubcalendar(ctx, 0, cmd.Args().First())
					if err != nil {
						return err
					}
					return printItem(item)
				},
			},
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "manage tucal configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "write the config file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Usage: "Teamup API token", Required: true},
					&cli.StringFlag{Name: "calendar-key", Usage: "calendar key", Required: true},
					&cli.StringFlag{Name: "endpoint", Usage: "API base URL override"},
					&cli.StringFlag{Name: "timezone", Usage: "IANA zone for offset-qualified date/times"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.String("config")
					if path == "" {
						if err := config.EnsureConfigDir(); err != nil {
							return err
						}
						defaultPath, err := config.GetConfigPath()
						if err != nil {
							return err
						}
						path = defaultPath
					}

					cfg := &config.Config{
						Token:       cmd.String("token"),
						CalendarKey: cmd.String("calendar-key"),
						APIEndpoint: cmd.String("endpoint"),
						Timezone:    cmd.String("timezone"),
					}
					if err := cfg.Validate(); err != nil {
						return err
					}
					if err := config.Save(path, cfg); err != nil {
						return fmt.Errorf("failed to write config: %w", err)
					}

					slog.Info("config written", "path", path)
					return nil
				},
			},
		},
	}
}

// parseFields turns repeated key=value flags into the open field bag the
// API bodies carry. Values stay strings; the API coerces where it needs to.
func parseFields(pairs []string) (teamup.Fields, error) {
	fields := teamup.Fields{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", pair)
		}
		fields[key] = value
	}
	return fields, nil
}

func printItem(item teamup.OutputItem) error {
	return printJSON(item.Payload)
}

func printItems(items []teamup.OutputItem) error {
	payloads := make([]teamup.Fields, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, item.Payload)
	}
	return printJSON(payloads)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
