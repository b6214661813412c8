package bench

import (
	"github.com/leapstack-labs/framebench/pkg/engine"
)

// StageResult is one entry of the stage result map: a stage name and its
// measured elapsed seconds.
type StageResult struct {
	Name    string  `json:"name"`
	Seconds float64 `json:"seconds"`
}

// Report is the ordered stage result map produced by a single harness run,
// plus the statistical outputs of the final stages for inspection. Stage
// entries appear in execution order, each stage at most once. A report from
// a failed run holds only the stages that completed.
type Report struct {
	Engine string        `json:"engine"`
	Config Config        `json:"config"`
	Stages []StageResult `json:"stages"`

	Summary     *engine.Summary     `json:"-"`
	Correlation *engine.CorrMatrix  `json:"-"`
	Groups      *engine.GroupResult `json:"-"`

	index map[string]int
}

// NewReport creates an empty report for the given engine and config.
func NewReport(engineName string, cfg Config) *Report {
	return &Report{
		Engine: engineName,
		Config: cfg,
		index:  make(map[string]int, len(StageOrder)),
	}
}

// Add records a stage's elapsed seconds. Recording the same stage twice
// replaces the earlier measurement so a stage never appears more than once.
func (r *Report) Add(name string, seconds float64) {
	if i, ok := r.index[name]; ok {
		r.Stages[i].Seconds = seconds
		return
	}
	r.index[name] = len(r.Stages)
	r.Stages = append(r.Stages, StageResult{Name: name, Seconds: seconds})
}

// Seconds returns the recorded elapsed seconds for a stage.
func (r *Report) Seconds(name string) (float64, bool) {
	i, ok := r.index[name]
	if !ok {
		return 0, false
	}
	return r.Stages[i].Seconds, true
}

// Total returns the sum of all recorded stage durations in seconds.
func (r *Report) Total() float64 {
	var total float64
	for _, s := range r.Stages {
		total += s.Seconds
	}
	return total
}

// Complete reports whether every pipeline stage was recorded.
func (r *Report) Complete() bool {
	return len(r.Stages) == len(StageOrder)
}
