package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	ac "github.com/gofhir/anthrocheck"
)

// Pipeline orchestrates the execution of phases. Phases run one at a time
// in priority order so findings keep a deterministic order.
type Pipeline struct {
	// registry holds all registered phases
	registry *PhaseRegistry

	// groups holds enabled phases organized by stage
	groups []*PhaseGroup

	// metrics tracks per-phase timings when non-nil
	metrics *ac.Metrics

	// options holds pipeline configuration
	options *PipelineOptions

	// mu protects concurrent access
	mu sync.RWMutex
}

// PipelineOptions configures pipeline behavior.
type PipelineOptions struct {
	// CollectMetrics enables per-phase metric collection
	CollectMetrics bool
}

// DefaultPipelineOptions returns sensible defaults.
func DefaultPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		CollectMetrics: true,
	}
}

// NewPipeline creates a new pipeline.
func NewPipeline(opts *PipelineOptions) *Pipeline {
	if opts == nil {
		opts = DefaultPipelineOptions()
	}

	return &Pipeline{
		registry: NewPhaseRegistry(),
		groups:   make([]*PhaseGroup, 0, 8),
		options:  opts,
	}
}

// RegisterConfig adds a pre-configured phase to the pipeline.
func (p *Pipeline) RegisterConfig(id PhaseID, config *PhaseConfig) {
	if config == nil {
		return
	}

	p.mu.Lock()
	p.registry.Register(id, config)
	p.mu.Unlock()

	p.rebuildGroups()
}

// DisableRule disables all phases of a rule category.
func (p *Pipeline) DisableRule(rule ac.RuleID) {
	p.mu.Lock()
	p.registry.DisableRule(rule)
	p.mu.Unlock()
	p.rebuildGroups()
}

// rebuildGroups organizes enabled phases into stages.
func (p *Pipeline) rebuildGroups() {
	p.mu.Lock()
	defer p.mu.Unlock()

	enabled := p.registry.GetEnabled()
	if len(enabled) == 0 {
		p.groups = nil
		return
	}

	// Stable: equal priorities keep registration order.
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	p.groups = groupByPriority(enabled)
}

// Execute runs the pipeline and returns pctx.Result, allocating one from the
// pool when unset. It returns ctx.Err() if the context is cancelled between
// phases.
func (p *Pipeline) Execute(ctx context.Context, pctx *Context) (*ac.Result, error) {
	if pctx.Result == nil {
		pctx.Result = ac.AcquireResult()
	}

	p.mu.RLock()
	groups := p.groups
	p.mu.RUnlock()

	for _, group := range groups {
		for _, cfg := range group.Phases {
			if err := ctx.Err(); err != nil {
				return pctx.Result, err
			}

			findings := p.executePhase(ctx, pctx, cfg)

			if cfg.Halt && len(findings) > 0 {
				return pctx.Result, nil
			}
		}
	}

	return pctx.Result, nil
}

// executePhase runs a single phase with timing.
func (p *Pipeline) executePhase(ctx context.Context, pctx *Context, cfg *PhaseConfig) []ac.Finding {
	start := time.Now()
	findings := cfg.Phase.Validate(ctx, pctx)

	if p.options.CollectMetrics && p.metrics != nil {
		p.metrics.RecordPhase(cfg.Phase.Name(), time.Since(start), len(findings))
	}

	pctx.Result.AddFindings(findings)
	return findings
}

// SetMetrics sets the metrics collector.
func (p *Pipeline) SetMetrics(m *ac.Metrics) {
	p.metrics = m
}

// Plan returns the enabled phases grouped by stage in execution order.
func (p *Pipeline) Plan() *ExecutionPlan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return NewExecutionPlan(p.groups)
}

// GroupCount returns the number of stages with at least one enabled phase.
func (p *Pipeline) GroupCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.groups)
}
