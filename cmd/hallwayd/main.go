// Package main implements the hallwayd CLI for running walks.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/fyrsmithlabs/hallwayd/internal/config"
	"github.com/fyrsmithlabs/hallwayd/internal/hallway"
	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
	"github.com/fyrsmithlabs/hallwayd/internal/rooms"
)

var (
	// version information, set at build time.
	version = "dev"

	configPath    string
	miniWalk      bool
	roomsSubset   []string
	sessionRef    string
	stopOnDecline bool
	dryRun        bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hallwayd",
	Short: "Deterministic multi-room session orchestrator",
	Long: `hallwayd runs a walk: a planned sequence of rooms executed under
budget tracking, gate chains and an auditable event log. The final output
is a single JSON document on stdout.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(walkCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hallwayd %s\n", version)
	},
}

// walkCmd runs a single walk and prints the final output.
var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Run a walk over the configured room sequence",
	Long: `Run a walk over the configured room sequence.

Examples:
  # Full five-room walk
  hallwayd walk

  # Opening rooms only
  hallwayd walk --mini-walk

  # A subset, in canonical order
  hallwayd walk --rooms entry_room,exit_room

  # Rehearse the plan without invoking rooms
  hallwayd walk --dry-run`,
	Args: cobra.NoArgs,
	RunE: runWalk,
}

func init() {
	walkCmd.Flags().BoolVar(&miniWalk, "mini-walk", false, "run only the opening rooms")
	walkCmd.Flags().StringSliceVar(&roomsSubset, "rooms", nil, "restrict the walk to these rooms, kept in canonical order")
	walkCmd.Flags().StringVar(&sessionRef, "session", "", "session state reference (generated when empty)")
	walkCmd.Flags().BoolVar(&stopOnDecline, "stop-on-decline", true, "halt the walk when a gate denies a room")
	walkCmd.Flags().BoolVar(&dryRun, "dry-run", false, "rehearse the plan without invoking rooms")
}

func runWalk(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	p, err := buildPorts(cfg, log)
	if err != nil {
		return err
	}

	out, err := executeWalk(cmd, cfg, p)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// applyFlags overlays explicitly set command-line flags on the loaded
// configuration. Only flags the user changed take effect, so config and env
// values survive untouched defaults.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("mini-walk") {
		cfg.Walk.MiniWalk = miniWalk
	}
	if cmd.Flags().Changed("rooms") {
		cfg.Walk.RoomsSubset = roomsSubset
	}
	if cmd.Flags().Changed("session") {
		cfg.Walk.SessionStateRef = sessionRef
	}
	if cmd.Flags().Changed("stop-on-decline") {
		cfg.Walk.Policy.StopOnDecline = &stopOnDecline
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Walk.Policy.DryRun = dryRun
	}
}

// buildPorts wires the default collaborator adapters.
func buildPorts(cfg *config.Config, log *logging.Logger) (*ports.Ports, error) {
	vector, err := ports.NewChromemSearch(cfg.Vector.Path, log)
	if err != nil {
		return nil, fmt.Errorf("creating vector search: %w", err)
	}

	p := &ports.Ports{
		LLM:     ports.NewTemplateLLM(),
		Vector:  vector,
		Storage: ports.NewMemoryStorage(),
		Clock:   ports.NewSystemClock(),
		IDs:     ports.NewUUIDFactory(),
		Metrics: ports.NewOTelMetrics(otel.Meter("hallwayd")),
		Log:     log,
	}
	p.Rooms = rooms.NewDefaultRegistry(p)
	return p, nil
}

// executeWalk plans the walk, builds the run context and runs it.
func executeWalk(cmd *cobra.Command, cfg *config.Config, p *ports.Ports) (*hallway.FinalOutput, error) {
	sequence := cfg.Walk.Sequence
	if len(sequence) == 0 {
		sequence = rooms.CanonicalSequence()
	}
	plan := hallway.PlanRooms(sequence, cfg.Walk.RoomsSubset, cfg.Walk.MiniWalk)

	ref := cfg.Walk.SessionStateRef
	if ref == "" {
		ref = p.IDs.NewID("session")
	}
	runID := p.IDs.NewID("run")
	correlationID := p.IDs.NewID("corr")

	state := map[string]any{
		"session_state_ref": ref,
	}
	if len(cfg.Walk.Payloads) > 0 {
		state["payloads"] = cfg.Walk.Payloads
	}

	policy := hallway.Policy{
		StopOnDecline: cfg.Walk.Policy.StopOnDeclineEnabled(),
		GateProfile: hallway.GateProfile{
			Chain:     cfg.Walk.Policy.GateProfile.Chain,
			Overrides: cfg.Walk.Policy.GateProfile.Overrides,
		},
		Gates: map[string]hallway.Gate{
			"coherence_gate": hallway.NewCoherenceGate(sequence),
		},
		MaxRetries: cfg.Walk.Policy.MaxRetries,
		DryRun:     cfg.Walk.Policy.DryRun,
	}

	rc := hallway.NewExecutionContext(runID, correlationID, plan, state, cfg.Walk.Budgets, p, policy)

	ctx := logging.WithRunID(cmd.Context(), runID)
	ctx = logging.WithCorrelationID(ctx, correlationID)

	orch := hallway.NewOrchestrator(hallway.NewStepExecutor(p.Log), p.Log)
	return orch.Run(ctx, rc), nil
}
