package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kaiginote/internal/delivery/routes"
	"kaiginote/internal/delivery/views"
	"kaiginote/internal/domain"
)

func newEventsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "List and manage events",
	}
	cmd.AddCommand(
		newEventsListCommand(e),
		newEventsShowCommand(e),
		newEventsCreateCommand(e),
		newEventsUpdateCommand(e),
		newEventsDeleteCommand(e),
	)
	return cmd
}

func newEventsListCommand(e *env) *cobra.Command {
	var (
		filter         domain.EventFilter
		status         string
		page, pageSize int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.app.open(domain.RouteHome); err != nil {
				return err
			}
			filter.Status = domain.EventStatus(status)
			if page > 0 {
				filter.PaginationParams = domain.PageParams(page, pageSize)
			}
			v := views.NewEventListView(e.app.Events)
			if err := v.Load(cmd.Context(), filter); err != nil {
				return err
			}
			return e.printer(cmd).events(v.Events())
		},
	}
	cmd.Flags().StringVar(&filter.Keyword, "keyword", "", "Match place or content")
	cmd.Flags().StringVar(&status, "status", "", "Only events with this status (planned, done, canceled)")
	cmd.Flags().IntVar(&filter.Skip, "skip", 0, "Number of events to skip")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of events (service default when 0)")
	cmd.Flags().IntVar(&page, "page", 0, "1-based page number; overrides --skip and --limit")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Events per page when --page is set")
	return cmd
}

// loadDetail opens the event's detail screen and loads it.
func loadDetail(cmd *cobra.Command, e *env, arg string) (*views.EventDetailView, error) {
	id, err := parseID(arg, "event id")
	if err != nil {
		return nil, err
	}
	if err := e.app.open(routes.EventPath(id)); err != nil {
		return nil, err
	}
	v := views.NewEventDetailView(e.app.Events, e.app.Participants, e.app.Auth, e.app.Router, e.app.Logger)
	if err := v.Load(cmd.Context(), id); err != nil {
		return nil, err
	}
	if v.NotFound() {
		return nil, fmt.Errorf("event %d not found", id)
	}
	return v, nil
}

func newEventsShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show EVENT_ID",
		Short: "Show an event with its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadDetail(cmd, e, args[0])
			if err != nil {
				return err
			}
			return e.printer(cmd).detail(eventDetail{
				Event:        v.Event(),
				Participants: v.Participants(),
				TotalPaid:    v.TotalPaid(),
			})
		},
	}
}

type eventFlags struct {
	start, end, place, content, status string
	totalCost                          int64
}

func (f *eventFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", `Start time, e.g. "2025-05-01 19:00"`)
	cmd.Flags().StringVar(&f.end, "end", "", `End time, e.g. "2025-05-01 21:00"`)
	cmd.Flags().StringVar(&f.place, "place", "", "Where the event takes place")
	cmd.Flags().StringVar(&f.content, "content", "", "What the event is about")
	cmd.Flags().StringVar(&f.status, "status", "", "planned, done or canceled")
	cmd.Flags().Int64Var(&f.totalCost, "total-cost", 0, "Total cost")
}

func parseTime(flag, value string) (domain.Timestamp, error) {
	ts, err := domain.ParseTimestamp(value)
	if err != nil {
		return domain.Timestamp{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return ts, nil
}

func newEventsCreateCommand(e *env) *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.app.open(domain.RouteEventCreate); err != nil {
				return err
			}
			in := domain.EventCreate{
				Place:     f.place,
				Status:    domain.EventStatus(f.status),
				TotalCost: f.totalCost,
			}
			var err error
			if f.start != "" {
				if in.StartTime, err = parseTime("start", f.start); err != nil {
					return err
				}
			}
			if f.end != "" {
				if in.EndTime, err = parseTime("end", f.end); err != nil {
					return err
				}
			}
			if f.content != "" {
				in.Content = &f.content
			}
			ev, err := views.NewEventFormView(e.app.Events, e.app.Router).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return e.printer(cmd).event(ev)
		},
	}
	f.bind(cmd)
	return cmd
}

func newEventsUpdateCommand(e *env) *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "update EVENT_ID",
		Short: "Change fields of an event; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "event id")
			if err != nil {
				return err
			}
			if err := e.app.open(routes.EventEditPath(id)); err != nil {
				return err
			}
			v := views.NewEventFormView(e.app.Events, e.app.Router)
			if err := v.LoadForEdit(cmd.Context(), id); err != nil {
				return err
			}
			if v.NotFound() {
				return fmt.Errorf("event %d not found", id)
			}

			var in domain.EventUpdate
			changed := cmd.Flags().Changed
			if changed("start") {
				ts, err := parseTime("start", f.start)
				if err != nil {
					return err
				}
				in.StartTime = &ts
			}
			if changed("end") {
				ts, err := parseTime("end", f.end)
				if err != nil {
					return err
				}
				in.EndTime = &ts
			}
			if changed("place") {
				in.Place = &f.place
			}
			if changed("content") {
				in.Content = &f.content
			}
			if changed("status") {
				s := domain.EventStatus(f.status)
				in.Status = &s
			}
			if changed("total-cost") {
				in.TotalCost = &f.totalCost
			}

			ev, err := v.Update(cmd.Context(), in)
			if err != nil {
				return err
			}
			return e.printer(cmd).event(ev)
		},
	}
	f.bind(cmd)
	return cmd
}

func newEventsDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event and its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadDetail(cmd, e, args[0])
			if err != nil {
				return err
			}
			if err := v.DeleteEvent(cmd.Context()); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("event %d not found", v.EventID())
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted event %d\n", v.EventID())
			return nil
		},
	}
}
