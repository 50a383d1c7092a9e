package config

import (
	"fmt"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
)

// Config is the full hallwayd configuration.
type Config struct {
	Walk    WalkConfig     `koanf:"walk"`
	Logging logging.Config `koanf:"logging"`
	Vector  VectorConfig   `koanf:"vector"`
}

// WalkConfig describes one walk request: the room plan, budgets, payloads
// and policy.
type WalkConfig struct {
	// Sequence is the canonical room ordering. Empty means the built-in
	// five-room sequence.
	Sequence []string `koanf:"sequence"`

	// RoomsSubset restricts the walk to these rooms, kept in sequence
	// order. Empty means the full sequence.
	RoomsSubset []string `koanf:"rooms_subset"`

	// MiniWalk truncates the plan to its opening rooms.
	MiniWalk bool `koanf:"mini_walk"`

	// SessionStateRef correlates the walk to externally persisted session
	// state. Empty generates a fresh one.
	SessionStateRef string `koanf:"session_state_ref"`

	// Budgets are per-resource ceilings (tokens, time_ms, retries).
	Budgets map[string]float64 `koanf:"budgets"`

	// Payloads are per-room input payloads, keyed by room id.
	Payloads map[string]map[string]any `koanf:"payloads"`

	Policy PolicyConfig `koanf:"policy"`
}

// PolicyConfig governs gate and failure handling for a walk.
type PolicyConfig struct {
	// StopOnDecline is a pointer so an explicit false survives defaulting;
	// unset means true.
	StopOnDecline *bool             `koanf:"stop_on_decline"`
	MaxRetries    int               `koanf:"max_retries"`
	DryRun        bool              `koanf:"dry_run"`
	GateProfile   GateProfileConfig `koanf:"gate_profile"`
}

// StopOnDeclineEnabled resolves the effective stop-on-decline setting.
func (p PolicyConfig) StopOnDeclineEnabled() bool {
	if p.StopOnDecline == nil {
		return true
	}
	return *p.StopOnDecline
}

// GateProfileConfig names the default gate chain and per-room overrides. An
// override replaces the chain for that room entirely.
type GateProfileConfig struct {
	Chain     []string            `koanf:"chain"`
	Overrides map[string][]string `koanf:"overrides"`
}

// VectorConfig configures the vector search port.
type VectorConfig struct {
	// Path persists the vector database under this directory. Empty keeps
	// it in memory.
	Path string `koanf:"path"`
}

// Default budget ceilings for a walk.
const (
	DefaultTokenBudget = 10000
	DefaultTimeBudget  = 30000
	DefaultRetryBudget = 3
)

// applyDefaults fills missing values with working defaults.
func applyDefaults(cfg *Config) {
	if cfg.Walk.Budgets == nil {
		cfg.Walk.Budgets = map[string]float64{
			"tokens":  DefaultTokenBudget,
			"time_ms": DefaultTimeBudget,
			"retries": DefaultRetryBudget,
		}
	}
	if cfg.Walk.Policy.StopOnDecline == nil {
		enabled := true
		cfg.Walk.Policy.StopOnDecline = &enabled
	}
	if len(cfg.Walk.Policy.GateProfile.Chain) == 0 {
		cfg.Walk.Policy.GateProfile.Chain = []string{"coherence_gate"}
	}
	if cfg.Walk.Policy.MaxRetries == 0 {
		cfg.Walk.Policy.MaxRetries = 3
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for resource, limit := range c.Walk.Budgets {
		if limit < 0 {
			return fmt.Errorf("walk budget %q cannot be negative: %v", resource, limit)
		}
	}
	if c.Walk.Policy.MaxRetries < 0 {
		return fmt.Errorf("policy max_retries cannot be negative: %d", c.Walk.Policy.MaxRetries)
	}

	sequence := make(map[string]struct{}, len(c.Walk.Sequence))
	for _, id := range c.Walk.Sequence {
		if id == "" {
			return fmt.Errorf("walk sequence contains an empty room id")
		}
		if _, dup := sequence[id]; dup {
			return fmt.Errorf("walk sequence repeats room %q", id)
		}
		sequence[id] = struct{}{}
	}
	return nil
}
