package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"kaiginote/internal/delivery/views"
	"kaiginote/internal/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(f string) bool {
	return f == formatTable || f == formatJSON || f == formatYAML
}

type printer struct {
	w      io.Writer
	format string
}

// print writes v as JSON or YAML, or calls table for the table format.
func (p printer) print(v any, table func(tw *tabwriter.Writer)) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func (p printer) events(events []*domain.Event) error {
	return p.print(events, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tSTART\tEND\tPLACE\tSTATUS\tCOST")
		for _, ev := range events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
				ev.ID, views.FormatTime(ev.StartTime), views.FormatTime(ev.EndTime),
				ev.Place, views.StatusLabel(ev.Status), ev.TotalCost)
		}
	})
}

func (p printer) event(ev *domain.Event) error {
	return p.print(ev, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "ID\t%d\n", ev.ID)
		fmt.Fprintf(tw, "Start\t%s\n", views.FormatTime(ev.StartTime))
		fmt.Fprintf(tw, "End\t%s\n", views.FormatTime(ev.EndTime))
		fmt.Fprintf(tw, "Place\t%s\n", ev.Place)
		fmt.Fprintf(tw, "Content\t%s\n", ev.ContentText())
		fmt.Fprintf(tw, "Status\t%s\n", views.StatusLabel(ev.Status))
		fmt.Fprintf(tw, "Total cost\t%d\n", ev.TotalCost)
	})
}

type eventDetail struct {
	Event        *domain.Event                 `json:"event" yaml:"event"`
	Participants []*domain.ParticipantWithUser `json:"participants" yaml:"participants"`
	TotalPaid    int64                         `json:"total_paid" yaml:"total_paid"`
}

func (p printer) detail(d eventDetail) error {
	return p.print(d, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "ID\t%d\n", d.Event.ID)
		fmt.Fprintf(tw, "Start\t%s\n", views.FormatTime(d.Event.StartTime))
		fmt.Fprintf(tw, "End\t%s\n", views.FormatTime(d.Event.EndTime))
		fmt.Fprintf(tw, "Place\t%s\n", d.Event.Place)
		fmt.Fprintf(tw, "Content\t%s\n", d.Event.ContentText())
		fmt.Fprintf(tw, "Status\t%s\n", views.StatusLabel(d.Event.Status))
		fmt.Fprintf(tw, "Total cost\t%d\n", d.Event.TotalCost)
		fmt.Fprintf(tw, "Total paid\t%d\n", d.TotalPaid)
		fmt.Fprintln(tw)
		writeParticipants(tw, d.Participants)
	})
}

func (p printer) participants(list []*domain.ParticipantWithUser) error {
	return p.print(list, func(tw *tabwriter.Writer) {
		writeParticipants(tw, list)
	})
}

func writeParticipants(tw *tabwriter.Writer, list []*domain.ParticipantWithUser) {
	fmt.Fprintln(tw, "PID\tUSER ID\tNAME\tPAID")
	for _, pt := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", pt.ID, pt.UserID, pt.UserName, pt.PaidAmount)
	}
}

func (p printer) user(u *domain.User) error {
	return p.print(u, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "ID\t%d\n", u.ID)
		fmt.Fprintf(tw, "Name\t%s\n", u.Name)
		fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	})
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}
