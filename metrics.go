package anthrocheck

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks validation counters and timings using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Validation counts
	validationsTotal atomic.Uint64
	validationsValid atomic.Uint64

	// Timing (stored as nanoseconds)
	validationTimeTotal atomic.Uint64
	validationTimeMin   atomic.Uint64
	validationTimeMax   atomic.Uint64

	// Cache metrics
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	// Finding counts by severity
	errorsTotal   atomic.Uint64
	warningsTotal atomic.Uint64

	// Finding counts by rule category
	ruleCounts sync.Map // map[RuleID]*atomic.Uint64

	// Per-phase timing
	phaseTiming sync.Map // map[string]*phaseMetrics
}

// phaseMetrics tracks metrics for a single validation phase.
type phaseMetrics struct {
	invocations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	findings    atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.validationTimeMin.Store(^uint64(0))
	return m
}

// --- Recording Methods ---

// RecordValidation records a completed validation.
func (m *Metrics) RecordValidation(duration time.Duration, valid bool) {
	m.validationsTotal.Add(1)
	if valid {
		m.validationsValid.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // Safe: nanoseconds are always positive for valid durations
	m.validationTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.validationTimeMin.Load()
		if ns >= old {
			break
		}
		if m.validationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.validationTimeMax.Load()
		if ns <= old {
			break
		}
		if m.validationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// RecordFinding records a finding by severity and rule category.
func (m *Metrics) RecordFinding(f Finding) {
	switch f.Severity {
	case SeverityError:
		m.errorsTotal.Add(1)
	case SeverityWarning:
		m.warningsTotal.Add(1)
	}
	m.ruleCounter(f.Rule).Add(1)
}

// RecordResult records a completed validation and all its findings.
func (m *Metrics) RecordResult(r *Result, duration time.Duration) {
	m.RecordValidation(duration, r.Valid)
	for _, f := range r.Findings {
		m.RecordFinding(f)
	}
}

// RecordPhase records metrics for a validation phase.
func (m *Metrics) RecordPhase(phaseName string, duration time.Duration, findings int) {
	pm := m.getOrCreatePhaseMetrics(phaseName)
	pm.invocations.Add(1)
	pm.totalTime.Add(uint64(duration.Nanoseconds())) //nolint:gosec // Safe: nanoseconds are always positive
	pm.findings.Add(uint64(findings))                //nolint:gosec // Safe: findings is a small positive integer
}

func (m *Metrics) ruleCounter(rule RuleID) *atomic.Uint64 {
	if v, ok := m.ruleCounts.Load(rule); ok {
		return v.(*atomic.Uint64)
	}
	actual, _ := m.ruleCounts.LoadOrStore(rule, &atomic.Uint64{})
	return actual.(*atomic.Uint64)
}

func (m *Metrics) getOrCreatePhaseMetrics(name string) *phaseMetrics {
	if v, ok := m.phaseTiming.Load(name); ok {
		return v.(*phaseMetrics)
	}
	pm := &phaseMetrics{}
	actual, _ := m.phaseTiming.LoadOrStore(name, pm)
	return actual.(*phaseMetrics)
}

// --- Query Methods ---

// ValidationsTotal returns the total number of validations performed.
func (m *Metrics) ValidationsTotal() uint64 {
	return m.validationsTotal.Load()
}

// ValidationsValid returns the number of valid validations.
func (m *Metrics) ValidationsValid() uint64 {
	return m.validationsValid.Load()
}

// ValidationRate returns the percentage of valid validations (0.0 to 1.0).
func (m *Metrics) ValidationRate() float64 {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.validationsValid.Load()) / float64(total)
}

// AverageValidationTime returns the average validation duration.
func (m *Metrics) AverageValidationTime() time.Duration {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	avgNs := m.validationTimeTotal.Load() / total
	return time.Duration(avgNs) //nolint:gosec // Safe: avgNs represents nanoseconds within int64 range
}

// MinValidationTime returns the minimum validation duration.
func (m *Metrics) MinValidationTime() time.Duration {
	minVal := m.validationTimeMin.Load()
	if minVal == ^uint64(0) {
		return 0
	}
	return time.Duration(minVal) //nolint:gosec // Safe: minVal represents nanoseconds within int64 range
}

// MaxValidationTime returns the maximum validation duration.
func (m *Metrics) MaxValidationTime() time.Duration {
	return time.Duration(m.validationTimeMax.Load()) //nolint:gosec // Safe: nanoseconds within int64 range
}

// CacheHits returns the total cache hits.
func (m *Metrics) CacheHits() uint64 {
	return m.cacheHits.Load()
}

// CacheMisses returns the total cache misses.
func (m *Metrics) CacheMisses() uint64 {
	return m.cacheMisses.Load()
}

// CacheHitRate returns the cache hit rate (0.0 to 1.0).
func (m *Metrics) CacheHitRate() float64 {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// ErrorsTotal returns the total error findings.
func (m *Metrics) ErrorsTotal() uint64 {
	return m.errorsTotal.Load()
}

// WarningsTotal returns the total warning findings.
func (m *Metrics) WarningsTotal() uint64 {
	return m.warningsTotal.Load()
}

// RuleCount returns the number of findings produced by a rule category.
func (m *Metrics) RuleCount(rule RuleID) uint64 {
	if v, ok := m.ruleCounts.Load(rule); ok {
		return v.(*atomic.Uint64).Load()
	}
	return 0
}

// RuleCounts returns finding counts for every rule that reported at least
// once, keyed by rule category.
func (m *Metrics) RuleCounts() map[RuleID]uint64 {
	out := make(map[RuleID]uint64)
	m.ruleCounts.Range(func(key, value any) bool {
		out[key.(RuleID)] = value.(*atomic.Uint64).Load()
		return true
	})
	return out
}

// PhaseStats returns statistics for a specific phase.
type PhaseStats struct {
	Name        string
	Invocations uint64
	TotalTime   time.Duration
	AvgTime     time.Duration
	Findings    uint64
}

// PhaseStats returns statistics for a specific phase.
func (m *Metrics) PhaseStats(phaseName string) (PhaseStats, bool) {
	v, ok := m.phaseTiming.Load(phaseName)
	if !ok {
		return PhaseStats{Name: phaseName}, false
	}
	pm := v.(*phaseMetrics)
	invocations := pm.invocations.Load()
	totalTime := pm.totalTime.Load()

	var avgTime time.Duration
	if invocations > 0 {
		avgTime = time.Duration(totalTime / invocations) //nolint:gosec // Safe: nanoseconds within int64 range
	}

	return PhaseStats{
		Name:        phaseName,
		Invocations: invocations,
		TotalTime:   time.Duration(totalTime), //nolint:gosec // Safe: nanoseconds within int64 range
		AvgTime:     avgTime,
		Findings:    pm.findings.Load(),
	}, true
}

// AllPhaseStats returns statistics for all phases.
func (m *Metrics) AllPhaseStats() []PhaseStats {
	var stats []PhaseStats
	m.phaseTiming.Range(func(key, value any) bool {
		pm := value.(*phaseMetrics)
		name := key.(string)
		invocations := pm.invocations.Load()
		totalTime := pm.totalTime.Load()

		var avgTime time.Duration
		if invocations > 0 {
			avgTime = time.Duration(totalTime / invocations) //nolint:gosec // Safe: nanoseconds within int64 range
		}

		stats = append(stats, PhaseStats{
			Name:        name,
			Invocations: invocations,
			TotalTime:   time.Duration(totalTime), //nolint:gosec // Safe: nanoseconds within int64 range
			AvgTime:     avgTime,
			Findings:    pm.findings.Load(),
		})
		return true
	})
	return stats
}

// --- Export Methods ---

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	// Timestamp when the snapshot was taken
	Timestamp time.Time `json:"timestamp"`

	// Validation metrics
	ValidationsTotal uint64  `json:"validations_total"`
	ValidationsValid uint64  `json:"validations_valid"`
	ValidationRate   float64 `json:"validation_rate"`

	// Timing metrics (in nanoseconds for precision)
	AvgValidationTimeNs uint64 `json:"avg_validation_time_ns"`
	MinValidationTimeNs uint64 `json:"min_validation_time_ns"`
	MaxValidationTimeNs uint64 `json:"max_validation_time_ns"`

	// Cache metrics
	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`

	// Finding metrics
	ErrorsTotal   uint64            `json:"errors_total"`
	WarningsTotal uint64            `json:"warnings_total"`
	Rules         map[RuleID]uint64 `json:"rules,omitempty"`

	// Phase metrics
	Phases []PhaseStats `json:"phases,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	total := m.validationsTotal.Load()
	cacheHits := m.cacheHits.Load()
	cacheMisses := m.cacheMisses.Load()

	var avgTime, validationRate, cacheHitRate float64
	if total > 0 {
		avgTime = float64(m.validationTimeTotal.Load()) / float64(total)
		validationRate = float64(m.validationsValid.Load()) / float64(total)
	}
	if cacheTotal := cacheHits + cacheMisses; cacheTotal > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheTotal)
	}

	minTime := m.validationTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}

	return Snapshot{
		Timestamp:           time.Now(),
		ValidationsTotal:    total,
		ValidationsValid:    m.validationsValid.Load(),
		ValidationRate:      validationRate,
		AvgValidationTimeNs: uint64(avgTime),
		MinValidationTimeNs: minTime,
		MaxValidationTimeNs: m.validationTimeMax.Load(),
		CacheHits:           cacheHits,
		CacheMisses:         cacheMisses,
		CacheHitRate:        cacheHitRate,
		ErrorsTotal:         m.errorsTotal.Load(),
		WarningsTotal:       m.warningsTotal.Load(),
		Rules:               m.RuleCounts(),
		Phases:              m.AllPhaseStats(),
	}
}

// Export returns metrics as a flat map suitable for external systems.
// Rule counts are exported as "rule_<id>_total".
func (m *Metrics) Export() map[string]any {
	s := m.Snapshot()
	out := map[string]any{
		"validations_total":      s.ValidationsTotal,
		"validations_valid":      s.ValidationsValid,
		"validation_rate":        s.ValidationRate,
		"avg_validation_time_ns": s.AvgValidationTimeNs,
		"min_validation_time_ns": s.MinValidationTimeNs,
		"max_validation_time_ns": s.MaxValidationTimeNs,
		"cache_hits":             s.CacheHits,
		"cache_misses":           s.CacheMisses,
		"cache_hit_rate":         s.CacheHitRate,
		"errors_total":           s.ErrorsTotal,
		"warnings_total":         s.WarningsTotal,
	}
	for rule, n := range s.Rules {
		out["rule_"+string(rule)+"_total"] = n
	}
	return out
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.validationTimeTotal.Store(0)
	m.validationTimeMin.Store(^uint64(0))
	m.validationTimeMax.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.errorsTotal.Store(0)
	m.warningsTotal.Store(0)

	m.ruleCounts.Range(func(key, _ any) bool {
		m.ruleCounts.Delete(key)
		return true
	})
	m.phaseTiming.Range(func(key, _ any) bool {
		m.phaseTiming.Delete(key)
		return true
	})
}
