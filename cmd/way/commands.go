package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/engine"
)

func parseTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, value); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", value, err)
		}
	}
	return &t, nil
}

func (a *app) lifecycleCommands() []*cobra.Command {
	var (
		id, title, area, principal, initial, deadline, criticality string
		conditioning                                              []string
		ackRequired                                               bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a new obligation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			o := &model.Obligation{
				ID:                id,
				Title:             title,
				AssignedArea:      area,
				ConditioningAreas: conditioning,
				PrincipalID:       principal,
				Criticality:       criticality,
				AckRequired:       ackRequired,
			}
			if initial != "" {
				if o.Status, err = status.Parse(initial); err != nil {
					return err
				}
			}
			if o.Deadline, err = parseTime(deadline); err != nil {
				return err
			}
			created, err := eng.Create(ctx, &engine.CreateCommand{Obligation: o})
			if err != nil {
				return err
			}
			return printJSON(cmd, view(created))
		},
	}
	create.Flags().StringVar(&id, "id", "", "Obligation id (generated when empty)")
	create.Flags().StringVar(&title, "title", "", "Title")
	create.Flags().StringVar(&area, "area", "", "Assigned area")
	create.Flags().StringSliceVar(&conditioning, "conditioning", nil, "Conditioning areas")
	create.Flags().StringVar(&principal, "principal", "", "Principal obligation id")
	create.Flags().StringVar(&initial, "status", "", "Initial status (NAO_INICIADO or PENDENTE)")
	create.Flags().StringVar(&deadline, "deadline", "", "Deadline (RFC 3339 or YYYY-MM-DD)")
	create.Flags().StringVar(&criticality, "criticality", "", "Criticality")
	create.Flags().BoolVar(&ackRequired, "ack-required", false, "Require the manager acknowledgment")

	var (
		updateTarget                                  targetFlags
		newTitle, newCriticality, newDeadline, reason string
		newAck                                        bool
	)
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit descriptive fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			command := &engine.UpdateCommand{Observation: reason}
			if command.Target, err = updateTarget.target(args[0]); err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				command.Title = &newTitle
			}
			if cmd.Flags().Changed("criticality") {
				command.Criticality = &newCriticality
			}
			if cmd.Flags().Changed("deadline") {
				if command.Deadline, err = parseTime(newDeadline); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("ack-required") {
				command.AckRequired = &newAck
			}
			o, err := eng.Update(ctx, command)
			if err != nil {
				return err
			}
			return printJSON(cmd, view(o))
		},
	}
	updateTarget.register(update)
	update.Flags().StringVar(&newTitle, "title", "", "New title")
	update.Flags().StringVar(&newCriticality, "criticality", "", "New criticality")
	update.Flags().StringVar(&newDeadline, "deadline", "", "New deadline")
	update.Flags().BoolVar(&newAck, "ack-required", false, "Require the manager acknowledgment")
	update.Flags().StringVar(&reason, "observation", "", "Observation recorded with the edit")

	var deleteTarget targetFlags
	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an obligation that was never sent to its area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			target, err := deleteTarget.target(args[0])
			if err != nil {
				return err
			}
			if err = eng.Delete(ctx, target); err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"deleted": args[0]})
		},
	}
	deleteTarget.register(remove)

	return []*cobra.Command{
		create, update, remove,
		a.justificationCommand("justify-delay", "Justify the delay of an overdue obligation",
			func(ctx context.Context, eng *engine.Service, target engine.Target, text string) (*model.Obligation, error) {
				return eng.JustifyDelay(ctx, &engine.JustifyDelayCommand{Target: target, Justification: text})
			}),
		a.justificationCommand("not-applicable", "Suspend an obligation as not applicable",
			func(ctx context.Context, eng *engine.Service, target engine.Target, text string) (*model.Obligation, error) {
				return eng.MarkNotApplicable(ctx, &engine.NotApplicableCommand{Target: target, Justification: text})
			}),
	}
}

func (a *app) justificationCommand(use, short string, run func(ctx context.Context, eng *engine.Service, target engine.Target, text string) (*model.Obligation, error)) *cobra.Command {
	var (
		flags         targetFlags
		justification string
	)
	cmd := &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			target, err := flags.target(args[0])
			if err != nil {
				return err
			}
			o, err := run(ctx, eng, target, justification)
			if err != nil {
				return err
			}
			return printJSON(cmd, view(o))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&justification, "justification", "", "Justification text")
	return cmd
}

type noteFunc func(eng *engine.Service, ctx context.Context, cmd *engine.NoteCommand) (*model.Obligation, error)

// noteCommand builds a command taking an observation and attachments.
func (a *app) noteCommand(use, short string, run noteFunc) *cobra.Command {
	var (
		flags       targetFlags
		observation string
		documents   []string
	)
	cmd := &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			note := &engine.NoteCommand{Observation: observation}
			if note.Target, err = flags.target(args[0]); err != nil {
				return err
			}
			if note.Attachments, err = parseAttachments(documents); err != nil {
				return err
			}
			o, err := run(eng, ctx, note)
			if err != nil {
				return err
			}
			return printJSON(cmd, view(o))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&observation, "observation", "m", "", "Observation")
	cmd.Flags().StringArrayVar(&documents, "attach", nil, "Attachment as KIND=name[@path], repeatable")
	return cmd
}

func (a *app) noteCommands() []*cobra.Command {
	attach := a.noteCommand("attach", "Attach documents; the kind selects the operation",
		func(eng *engine.Service, ctx context.Context, cmd *engine.NoteCommand) (*model.Obligation, error) {
			if len(cmd.Attachments) == 0 {
				return nil, fmt.Errorf("at least one --attach is required")
			}
			switch kind := attachment.Classify(cmd.Attachments[0]); {
			case kind.Evidence():
				return eng.AttachEvidence(ctx, cmd)
			case kind == attachment.Correspondence:
				return eng.AttachCorrespondence(ctx, cmd)
			case kind == attachment.Protocol:
				return eng.AttachProtocol(ctx, &engine.ProtocolCommand{Target: cmd.Target, Observation: cmd.Observation, Attachments: cmd.Attachments})
			}
			return eng.AttachOther(ctx, cmd)
		})

	var (
		detachTarget targetFlags
		detachReason string
	)
	detach := &cobra.Command{
		Use:   "detach ID ATTACHMENT_ID",
		Short: "Remove an attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			command := &engine.DetachCommand{AttachmentID: args[1], Observation: detachReason}
			if command.Target, err = detachTarget.target(args[0]); err != nil {
				return err
			}
			o, err := eng.DetachAttachment(ctx, command)
			if err != nil {
				return err
			}
			return printJSON(cmd, view(o))
		},
	}
	detachTarget.register(detach)
	detach.Flags().StringVarP(&detachReason, "observation", "m", "", "Observation")

	return []*cobra.Command{
		attach, detach,
		a.noteCommand("comment", "Record an opinion", (*engine.Service).Comment),
		a.noteCommand("send-to-area", "Hand a new obligation to its assigned area", (*engine.Service).SendToArea),
		a.noteCommand("mark-overdue", "Move a running obligation past its deadline to ATRASADA", (*engine.Service).MarkOverdue),
		a.noteCommand("send-to-analysis", "Send executed work to regulatory validation", (*engine.Service).SendToAnalysis),
		a.noteCommand("request-adjustments", "Return an obligation under validation to its area", (*engine.Service).RequestAdjustments),
		a.noteCommand("approve-conference", "Approve the regulatory conference", (*engine.Service).ApproveConference),
		a.noteCommand("route-to-approval", "Enter the approval chain", (*engine.Service).RouteToApproval),
		a.noteCommand("acknowledge", "Check the manager acknowledgment", (*engine.Service).Acknowledge),
	}
}

func (a *app) routingCommands() []*cobra.Command {
	advance := func(use, short string, run func(eng *engine.Service, ctx context.Context, cmd *engine.AdvanceCommand) (*model.Obligation, error)) *cobra.Command {
		var (
			flags       targetFlags
			observation string
			approval    string
			documents   []string
		)
		cmd := &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, eng, err := a.engine(cmd)
				if err != nil {
					return err
				}
				command := &engine.AdvanceCommand{Observation: observation}
				if command.Target, err = flags.target(args[0]); err != nil {
					return err
				}
				if command.Approval, err = model.ParseApprovalFlag(approval); err != nil {
					return err
				}
				if command.Attachments, err = parseAttachments(documents); err != nil {
					return err
				}
				o, err := run(eng, ctx, command)
				if err != nil {
					return err
				}
				return printJSON(cmd, view(o))
			},
		}
		flags.register(cmd)
		cmd.Flags().StringVarP(&observation, "observation", "m", "", "Observation (required)")
		cmd.Flags().StringArrayVar(&documents, "attach", nil, "Attachment as KIND=name[@path], repeatable")
		if use == "advance" {
			cmd.Flags().StringVar(&approval, "approval", "", "Decision: NONE, APPROVED or REJECTED")
		}
		return cmd
	}

	var (
		protocolTarget                         targetFlags
		registry, process, protocolObservation string
		protocolDocuments                      []string
	)
	protocol := &cobra.Command{
		Use:   "protocol ID",
		Short: "File the protocol and conclude the obligation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			command := &engine.ProtocolCommand{ProtocolRegistry: registry, ProcessNumber: process, Observation: protocolObservation}
			if command.Target, err = protocolTarget.target(args[0]); err != nil {
				return err
			}
			if command.Attachments, err = parseAttachments(protocolDocuments); err != nil {
				return err
			}
			o, err := eng.AttachProtocol(ctx, command)
			if err != nil {
				return err
			}
			return printJSON(cmd, view(o))
		},
	}
	protocolTarget.register(protocol)
	protocol.Flags().StringVar(&registry, "registry", "", "Protocol registry")
	protocol.Flags().StringVar(&process, "process", "", "Process number")
	protocol.Flags().StringVarP(&protocolObservation, "observation", "m", "", "Observation")
	protocol.Flags().StringArrayVar(&protocolDocuments, "attach", nil, "Protocol document as PROTOCOL=name[@path]")

	return []*cobra.Command{
		advance("advance", "Advance along the approval chain", (*engine.Service).AdvanceRouting),
		advance("approve", "Approve at a decision stage", (*engine.Service).Approve),
		advance("reject", "Reject at a decision stage", (*engine.Service).Reject),
		protocol,
	}
}

func (a *app) queryCommands() []*cobra.Command {
	byID := func(use, short string, run func(ctx context.Context, eng *engine.Service, id string) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, eng, err := a.engine(cmd)
				if err != nil {
					return err
				}
				ret, err := run(ctx, eng, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, ret)
			},
		}
	}

	var statuses []string
	var area, principal string
	list := &cobra.Command{
		Use:   "list",
		Short: "List obligations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, err := a.engine(cmd)
			if err != nil {
				return err
			}
			var parameters []*dao.Parameter
			if len(statuses) > 0 {
				keys := make([]string, 0, len(statuses))
				for _, value := range statuses {
					code, err := status.Parse(value)
					if err != nil {
						return err
					}
					keys = append(keys, code.Key())
				}
				parameters = append(parameters, dao.NewParameter(obligation.ParamStatus, keys...))
			}
			if area != "" {
				parameters = append(parameters, dao.NewParameter(obligation.ParamAssignedArea, area))
			}
			if principal != "" {
				parameters = append(parameters, dao.NewParameter(obligation.ParamPrincipalID, principal))
			}
			items, err := eng.List(ctx, parameters...)
			if err != nil {
				return err
			}
			views := make([]any, 0, len(items))
			for _, o := range items {
				views = append(views, view(o))
			}
			return printJSON(cmd, views)
		},
	}
	list.Flags().StringSliceVar(&statuses, "status", nil, "Status filter")
	list.Flags().StringVar(&area, "area", "", "Assigned area filter")
	list.Flags().StringVar(&principal, "principal", "", "Principal obligation filter")

	return []*cobra.Command{
		list,
		byID("get", "Show an obligation", func(ctx context.Context, eng *engine.Service, id string) (any, error) {
			o, err := eng.Get(ctx, id)
			return view(o), err
		}),
		byID("history", "Show transitions and opinions", func(ctx context.Context, eng *engine.Service, id string) (any, error) {
			return eng.History(ctx, id)
		}),
		byID("attachments", "List attachments", func(ctx context.Context, eng *engine.Service, id string) (any, error) {
			return eng.Attachments(ctx, id)
		}),
		byID("permissions", "Show what the acting user may do", func(ctx context.Context, eng *engine.Service, id string) (any, error) {
			set, err := eng.Permissions(ctx, id)
			if err != nil {
				return nil, err
			}
			return set.Decisions, nil
		}),
		byID("plan", "Show where the next routing advance goes", func(ctx context.Context, eng *engine.Service, id string) (any, error) {
			advance, err := eng.PlanNextAdvance(ctx, id)
			if err != nil || advance == nil {
				return advance, err
			}
			return map[string]string{
				"from":      advance.From.Key(),
				"target":    advance.Target.Key(),
				"label":     advance.Label,
				"direction": strings.ToLower(string(advance.Direction)),
			}, nil
		}),
	}
}
