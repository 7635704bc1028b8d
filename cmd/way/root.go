package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	way "github.com/RTech-Solucoes/way-correspondencias-web-sub002"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/engine"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/identity"
)

// app holds the global flags and the lazily built service.
type app struct {
	configURL string
	dataDir   string
	actorID   string
	roleName  string
	areas     []string

	srv *way.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "way",
		Short: "Manage regulatory obligations",
		Long: `way creates obligations and moves them through execution, regulatory
validation and the approval chain. Every command runs as the actor given by
--actor, --role and --areas and prints the result as JSON.

Examples:
  way create --id o1 --area LEGAL --actor ana --role ADMINISTRATOR
  way attach o1 --attach EVIDENCE_FILE=report.pdf --actor joe --role EXECUTOR --areas LEGAL
  way permissions o1 --actor joe --role EXECUTOR --areas LEGAL`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.srv == nil {
				return nil
			}
			return a.srv.Close()
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configURL, "config", "", "Configuration file (YAML or JSON, any afs URL)")
	flags.StringVar(&a.dataDir, "data", ".way", "Data directory used when the configuration keeps obligations in memory")
	flags.StringVar(&a.actorID, "actor", "", "Acting user id")
	flags.StringVar(&a.roleName, "role", "", "Acting user role")
	flags.StringSliceVar(&a.areas, "areas", nil, "Areas the acting user belongs to")

	cmd.AddCommand(a.lifecycleCommands()...)
	cmd.AddCommand(a.noteCommands()...)
	cmd.AddCommand(a.routingCommands()...)
	cmd.AddCommand(a.queryCommands()...)
	cmd.AddCommand(newSecureCmd())
	return cmd
}

// service builds the service on first use.
func (a *app) service(ctx context.Context) (*way.Service, error) {
	if a.srv != nil {
		return a.srv, nil
	}
	cfg, err := way.LoadConfig(ctx, a.configURL)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Kind == "" || cfg.Store.Kind == way.StoreMemory {
		cfg.Store = way.StoreConfig{Kind: way.StoreFS, URL: a.dataDir}
	}
	if a.srv, err = way.NewFromConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return a.srv, nil
}

// engine returns the engine and a context carrying the acting user.
func (a *app) engine(cmd *cobra.Command) (context.Context, *engine.Service, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	srv, err := a.service(ctx)
	if err != nil {
		return nil, nil, err
	}
	if a.actorID != "" {
		r, err := role.Parse(a.roleName)
		if err != nil {
			return nil, nil, err
		}
		ctx = identity.WithActor(ctx, &identity.Actor{ID: a.actorID, Role: r, Areas: a.areas})
	}
	return ctx, srv.Engine(), nil
}

// obligationView adds the symbolic status to the JSON output.
type obligationView struct {
	*model.Obligation
	StatusKey   string `json:"statusKey"`
	StatusLabel string `json:"statusLabel"`
}

func view(o *model.Obligation) any {
	if o == nil {
		return nil
	}
	return &obligationView{Obligation: o, StatusKey: o.Status.Key(), StatusLabel: o.Status.Label()}
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// targetFlags are shared by every command acting on an existing obligation.
type targetFlags struct {
	expectedStatus  string
	expectedVersion int64
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.expectedStatus, "expected-status", "", "Fail unless the obligation is in this status")
	cmd.Flags().Int64Var(&f.expectedVersion, "expected-version", 0, "Fail unless the obligation is at this version")
}

func (f *targetFlags) target(id string) (engine.Target, error) {
	ret := engine.Target{ObligationID: id, ExpectedVersion: f.expectedVersion}
	if f.expectedStatus != "" {
		code, err := status.Parse(f.expectedStatus)
		if err != nil {
			return ret, err
		}
		ret.ExpectedStatus = code
	}
	return ret, nil
}

// parseAttachments reads KIND=name[@path] documents.
func parseAttachments(documents []string) ([]*attachment.Attachment, error) {
	var ret []*attachment.Attachment
	for _, value := range documents {
		kind, rest, ok := strings.Cut(value, "=")
		if !ok || strings.TrimSpace(rest) == "" {
			return nil, fmt.Errorf("invalid attachment %q, expected KIND=name[@path]", value)
		}
		name, location, _ := strings.Cut(rest, "@")
		ret = append(ret, &attachment.Attachment{Kind: attachment.ParseKind(kind), Name: name, Path: location})
	}
	return ret, nil
}
