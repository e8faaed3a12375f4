package pipeline

import ac "github.com/gofhir/anthrocheck"

// PhaseGroup represents the phases of one stage.
// Phases in the same group have the same priority level.
type PhaseGroup struct {
	// Priority is the execution priority of this group
	Priority PhasePriority

	// Phases contains all phases in this group, in execution order
	Phases []*PhaseConfig
}

// Names returns the names of all phases in the group.
func (g *PhaseGroup) Names() []string {
	names := make([]string, len(g.Phases))
	for i, cfg := range g.Phases {
		names[i] = cfg.Phase.Name()
	}
	return names
}

// Stage returns a short label for the group priority.
func (g *PhaseGroup) Stage() string {
	return StageName(g.Priority)
}

// StageName returns the label of a standard priority, or "custom".
func StageName(p PhasePriority) string {
	switch p {
	case PriorityGate:
		return "gate"
	case PriorityBasic:
		return "basic"
	case PriorityNorm:
		return "norm"
	case PriorityDerived:
		return "derived"
	case PriorityCross:
		return "cross"
	default:
		return "custom"
	}
}

// ExecutionPlan represents the planned order of phase execution.
type ExecutionPlan struct {
	Groups []*PhaseGroup
}

// NewExecutionPlan creates an execution plan from phase groups.
func NewExecutionPlan(groups []*PhaseGroup) *ExecutionPlan {
	return &ExecutionPlan{
		Groups: groups,
	}
}

// PhaseNames returns all phase names in execution order.
func (p *ExecutionPlan) PhaseNames() []string {
	var names []string
	for _, group := range p.Groups {
		names = append(names, group.Names()...)
	}
	return names
}

// Rules returns the distinct rule categories in first-execution order.
func (p *ExecutionPlan) Rules() []ac.RuleID {
	seen := make(map[ac.RuleID]bool)
	var rules []ac.RuleID
	for _, group := range p.Groups {
		for _, cfg := range group.Phases {
			if !seen[cfg.Rule] {
				seen[cfg.Rule] = true
				rules = append(rules, cfg.Rule)
			}
		}
	}
	return rules
}

// TotalPhases returns the total number of phases.
func (p *ExecutionPlan) TotalPhases() int {
	count := 0
	for _, group := range p.Groups {
		count += len(group.Phases)
	}
	return count
}

// groupByPriority groups phases, already sorted by priority, into
// consecutive stages.
func groupByPriority(phases []*PhaseConfig) []*PhaseGroup {
	var groups []*PhaseGroup
	for _, cfg := range phases {
		if n := len(groups); n > 0 && groups[n-1].Priority == cfg.Priority {
			groups[n-1].Phases = append(groups[n-1].Phases, cfg)
			continue
		}
		groups = append(groups, &PhaseGroup{
			Priority: cfg.Priority,
			Phases:   []*PhaseConfig{cfg},
		})
	}
	return groups
}
