package dynamics

import (
	"fmt"
	"time"
)

// ExperimentData is the measurement output of one experiment.
type ExperimentData struct {
	Counts    map[string]int
	Memory    []string
	IQMemory  [][]complex128
	IQAverage []complex128
}

// ExperimentHeader echoes what identifies the experiment.
type ExperimentHeader struct {
	Name            string
	MemorySlots     int
	MaxOutcomeLevel int
	Metadata        map[string]any
}

type ExperimentResult struct {
	Shots      int
	Success    bool
	Status     string
	MeasLevel  int
	MeasReturn MeasReturn
	Seed       uint64
	Data       ExperimentData
	Header     ExperimentHeader
}

// Result collects the experiments of one job, in submission order.
type Result struct {
	BackendName string
	JobID       string
	Success     bool
	Results     []*ExperimentResult
	Date        time.Time
}

func (r *Result) experiment(i int) (*ExperimentResult, error) {
	if i < 0 || i >= len(r.Results) {
		return nil, fmt.Errorf("%w: no experiment %d in result of %d", ErrLookup, i, len(r.Results))
	}
	if r.Results[i] == nil {
		return nil, fmt.Errorf("%w: experiment %d has no result", ErrLookup, i)
	}
	return r.Results[i], nil
}

/*
Counts returns the counts of experiment i keyed by outcome string: one digit per memory
slot, highest slot first, so a two-slot binary outcome with slot 0 set reads "01".
*/
func (r *Result) Counts(i int) (map[string]int, error) {
	exp, err := r.experiment(i)
	if err != nil {
		return nil, err
	}
	if exp.Data.Counts == nil {
		return nil, fmt.Errorf("%w: experiment %d has no counts", ErrLookup, i)
	}

	out := make(map[string]int, len(exp.Data.Counts))
	for key, n := range exp.Data.Counts {
		label, err := exp.Header.outcomeLabel(key)
		if err != nil {
			return nil, err
		}
		out[label] += n
	}
	return out, nil
}

// Memory returns the per-shot outcome strings of experiment i.
func (r *Result) Memory(i int) ([]string, error) {
	exp, err := r.experiment(i)
	if err != nil {
		return nil, err
	}
	if exp.Data.Memory == nil {
		return nil, fmt.Errorf("%w: experiment %d has no memory", ErrLookup, i)
	}

	out := make([]string, len(exp.Data.Memory))
	for s, key := range exp.Data.Memory {
		if out[s], err = exp.Header.outcomeLabel(key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (h ExperimentHeader) outcomeLabel(key string) (string, error) {
	return decodeOutcome(key, h.MemorySlots, max(h.MaxOutcomeLevel, 1))
}
