package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kaiginote/internal/domain"
)

func newParticipantsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "participants",
		Aliases: []string{"participant"},
		Short:   "Manage who takes part in an event and what they paid",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list EVENT_ID",
			Short: "List the participants of an event",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := loadDetail(cmd, e, args[0])
				if err != nil {
					return err
				}
				return e.printer(cmd).participants(v.Participants())
			},
		},
		newParticipantsAddCommand(e),
		newParticipantsUpdateCommand(e),
		&cobra.Command{
			Use:   "remove EVENT_ID PARTICIPANT_ID",
			Short: "Remove a participant from an event",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pid, err := parseID(args[1], "participant id")
				if err != nil {
					return err
				}
				v, err := loadDetail(cmd, e, args[0])
				if err != nil {
					return err
				}
				if err := v.RemoveParticipant(cmd.Context(), pid); err != nil {
					return err
				}
				return e.printer(cmd).participants(v.Participants())
			},
		},
	)
	return cmd
}

func newParticipantsAddCommand(e *env) *cobra.Command {
	var in domain.ParticipantCreate
	cmd := &cobra.Command{
		Use:   "add EVENT_ID",
		Short: "Add a participant; defaults to yourself",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadDetail(cmd, e, args[0])
			if err != nil {
				return err
			}
			if err := v.AddParticipant(cmd.Context(), in); err != nil {
				return err
			}
			return e.printer(cmd).participants(v.Participants())
		},
	}
	cmd.Flags().Int64Var(&in.UserID, "user-id", 0, "User to add (default: the logged-in user)")
	cmd.Flags().Int64Var(&in.PaidAmount, "paid", 0, "Amount paid")
	return cmd
}

func newParticipantsUpdateCommand(e *env) *cobra.Command {
	var paid int64
	cmd := &cobra.Command{
		Use:   "update EVENT_ID PARTICIPANT_ID",
		Short: "Change what a participant paid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID(args[1], "participant id")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("paid") {
				return fmt.Errorf("--paid is required")
			}
			v, err := loadDetail(cmd, e, args[0])
			if err != nil {
				return err
			}
			if err := v.UpdateParticipant(cmd.Context(), pid, domain.ParticipantUpdate{PaidAmount: &paid}); err != nil {
				return err
			}
			return e.printer(cmd).participants(v.Participants())
		},
	}
	cmd.Flags().Int64Var(&paid, "paid", 0, "Amount paid")
	return cmd
}
