package pipeline

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
)

// Phase represents a single check in the pipeline.
//
// Phases should be:
// - Stateless: All state should be in the Context
// - Thread-safe: Multiple goroutines may call Validate concurrently
// - Deterministic: The same Context always yields the same findings
type Phase interface {
	// Name returns the unique identifier for this phase.
	Name() string

	// Validate performs the check and returns its findings in order.
	Validate(ctx context.Context, pctx *Context) []ac.Finding
}

// PhaseID uniquely identifies a phase.
type PhaseID string

// Standard phase identifiers, listed in evaluation order.
const (
	PhaseIDRequired    PhaseID = "required-fields"
	PhaseIDAge         PhaseID = "age"
	PhaseIDSex         PhaseID = "sex"
	PhaseIDHeight      PhaseID = "height"
	PhaseIDWeight      PhaseID = "weight"
	PhaseIDHeightNorm  PhaseID = "height-norm"
	PhaseIDBMI         PhaseID = "bmi"
	PhaseIDWaistRatio  PhaseID = "waist-ratio"
	PhaseIDSpanRatio   PhaseID = "span-ratio"
	PhaseIDLegRatio    PhaseID = "leg-ratio"
	PhaseIDAdultWeight PhaseID = "adult-weight"
	PhaseIDChildWeight PhaseID = "child-weight"
	PhaseIDWaistSpan   PhaseID = "waist-span"
	PhaseIDLegSpan     PhaseID = "leg-span"
)

// PhasePriority defines the stage a phase belongs to.
// Lower values run first; phases of equal priority run in registration
// order.
type PhasePriority int

const (
	// PriorityGate for the required-field gate
	PriorityGate PhasePriority = 100

	// PriorityBasic for single-field range checks
	PriorityBasic PhasePriority = 200

	// PriorityNorm for reference norms depending on age and sex
	PriorityNorm PhasePriority = 300

	// PriorityDerived for checks on derived quantities (BMI, ratios, weight)
	PriorityDerived PhasePriority = 400

	// PriorityCross for checks comparing optional measurements
	PriorityCross PhasePriority = 500
)

// PhaseConfig holds configuration for a phase in the pipeline.
type PhaseConfig struct {
	// Phase is the phase implementation
	Phase Phase

	// Rule is the category of the findings the phase emits
	Rule ac.RuleID

	// Priority determines execution order (lower runs first)
	Priority PhasePriority

	// Required indicates if this phase must run (cannot be disabled)
	Required bool

	// Halt stops the pipeline when the phase reports any finding
	Halt bool

	// Enabled indicates if this phase is currently enabled
	Enabled bool
}

// PhaseRegistry manages phases in registration order.
type PhaseRegistry struct {
	order  []PhaseID
	phases map[PhaseID]*PhaseConfig
}

// NewPhaseRegistry creates a new empty registry.
func NewPhaseRegistry() *PhaseRegistry {
	return &PhaseRegistry{
		phases: make(map[PhaseID]*PhaseConfig),
	}
}

// Register adds a phase to the registry. Registering an existing ID
// replaces its configuration but keeps its position.
func (r *PhaseRegistry) Register(id PhaseID, config *PhaseConfig) {
	if _, ok := r.phases[id]; !ok {
		r.order = append(r.order, id)
	}
	r.phases[id] = config
}

// GetEnabled returns all enabled phases in registration order.
func (r *PhaseRegistry) GetEnabled() []*PhaseConfig {
	var enabled []*PhaseConfig
	for _, id := range r.order {
		if cfg := r.phases[id]; cfg.Enabled {
			enabled = append(enabled, cfg)
		}
	}
	return enabled
}

// DisableRule disables every non-required phase of a rule category.
func (r *PhaseRegistry) DisableRule(rule ac.RuleID) {
	for _, cfg := range r.phases {
		if cfg.Rule == rule && !cfg.Required {
			cfg.Enabled = false
		}
	}
}

// ConditionalPhase wraps a phase with a condition on the record, such as an
// age range.
type ConditionalPhase struct {
	phase     Phase
	condition func(*Context) bool
}

// NewConditionalPhase creates a phase that only runs when a condition is met.
func NewConditionalPhase(phase Phase, condition func(*Context) bool) Phase {
	return &ConditionalPhase{
		phase:     phase,
		condition: condition,
	}
}

// Name returns the wrapped phase name.
func (p *ConditionalPhase) Name() string {
	return p.phase.Name()
}

// Validate runs the phase if the condition is met.
func (p *ConditionalPhase) Validate(ctx context.Context, pctx *Context) []ac.Finding {
	if p.condition != nil && !p.condition(pctx) {
		return nil
	}
	return p.phase.Validate(ctx, pctx)
}
