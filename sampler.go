package dynamics

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"math/big"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
)

/*
ExperimentInput is everything an outcome function gets to turn one simulated
experiment into measurement data. MeasurementSubsystems[i] is written to
MemorySlotIndices[i]. Options are those of the run, which may differ from the
Backend's own.
*/
type ExperimentInput struct {
	Name                  string
	SolverResult          *SolverResult
	MeasurementSubsystems []int
	MemorySlotIndices     []int
	NumMemorySlots        int
	Backend               *Backend
	Seed                  uint64
	Metadata              map[string]any
	Options               *Options
}

// ExperimentResultFunction synthesises measurement outcomes from a simulated state.
type ExperimentResultFunction interface {
	ExperimentResult(in ExperimentInput) (*ExperimentResult, error)
}

// ExperimentResultFunc adapts a plain function to ExperimentResultFunction.
type ExperimentResultFunc func(in ExperimentInput) (*ExperimentResult, error)

func (f ExperimentResultFunc) ExperimentResult(in ExperimentInput) (*ExperimentResult, error) {
	return f(in)
}

type defaultResultFunction struct{}

func (defaultResultFunction) ExperimentResult(in ExperimentInput) (*ExperimentResult, error) {
	return DefaultExperimentResult(in)
}

const outcomeDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

// pcgStream separates the two PCG words derived from one seed.
const pcgStream = 0x9e3779b97f4a7c15

/*
DefaultExperimentResult samples the final state of the experiment.

At meas_level 2 each shot draws a joint outcome of the measured subsystems, with every
level above max_outcome_level counted as max_outcome_level, and writes it into the
memory slots. Counts and memory use hex keys of the slot digits in base
max_outcome_level+1, slot 0 least significant.

At meas_level 1 each shot draws a basis state and every measured subsystem yields an IQ
point scattered around the center of its level with standard deviation iq_width. In avg
mode the sampled points are averaged over shots.
*/
func DefaultExperimentResult(in ExperimentInput) (*ExperimentResult, error) {
	opts := DefaultOptions()
	switch {
	case in.Options != nil:
		opts = *in.Options
	case in.Backend != nil:
		opts = in.Backend.Options()
	}

	final, ok := in.SolverResult.Final().(Measurable)
	if !ok {
		return nil, fmt.Errorf("%w: final state of experiment %q cannot be measured", ErrUnsupported, in.Name)
	}

	dims := opts.SubsystemDims
	if len(dims) == 0 {
		dims = []int{final.Dim()}
	}
	if len(in.MeasurementSubsystems) != len(in.MemorySlotIndices) {
		return nil, fmt.Errorf(
			"%w: %d measured subsystems but %d memory slots",
			ErrInputValidation, len(in.MeasurementSubsystems), len(in.MemorySlotIndices),
		)
	}
	for _, slot := range in.MemorySlotIndices {
		if slot < 0 || slot >= in.NumMemorySlots {
			return nil, fmt.Errorf("%w: memory slot %d outside %d slots", ErrInputValidation, slot, in.NumMemorySlots)
		}
	}

	rng := rand.New(rand.NewPCG(in.Seed, in.Seed^pcgStream))

	result := &ExperimentResult{
		Shots:      opts.Shots,
		Success:    true,
		Status:     in.SolverResult.Message,
		MeasLevel:  opts.MeasLevel,
		MeasReturn: opts.MeasReturn,
		Seed:       in.Seed,
		Header: ExperimentHeader{
			Name:            in.Name,
			MemorySlots:     in.NumMemorySlots,
			MaxOutcomeLevel: opts.MaxOutcomeLevel,
			Metadata:        in.Metadata,
		},
	}

	probs := final.Probabilities()

	switch opts.MeasLevel {
	case 2:
		slotProbs, err := memorySlotProbabilities(
			probs, dims, in.MeasurementSubsystems, in.MemorySlotIndices, in.NumMemorySlots, opts.MaxOutcomeLevel,
		)
		if err != nil {
			return nil, err
		}

		keys := hexKeys(sampleProbabilities(slotProbs, opts.Shots, rng), opts.MaxOutcomeLevel)
		result.Data.Counts = countsFromKeys(keys)
		if opts.Memory {
			result.Data.Memory = keys
		}

	case 1:
		iq, err := iqData(probs, dims, in.MeasurementSubsystems, in.MemorySlotIndices, in.NumMemorySlots, opts, rng)
		if err != nil {
			return nil, err
		}

		if opts.MeasReturn == MeasReturnAvg {
			result.Data.IQAverage = averageIQ(iq, in.NumMemorySlots)
		} else {
			result.Data.IQMemory = iq
		}

	default:
		return nil, fmt.Errorf("%w: only meas_level 1 and 2 are supported", ErrConfiguration)
	}

	return result, nil
}

/*
memorySlotProbabilities folds basis-state probabilities onto memory-slot outcomes. An
outcome is keyed by its slot digits in base maxLevel+1, highest slot first, so keys of
equal length sort in outcome order. The returned distribution sums to one.
*/
func memorySlotProbabilities(
	probs []float64,
	dims []int,
	measured, slots []int,
	numSlots, maxLevel int,
) (map[string]float64, error) {
	if product(dims) != len(probs) {
		return nil, fmt.Errorf(
			"%w: subsystem_dims %v inconsistent with state of dimension %d",
			ErrInputValidation, dims, len(probs),
		)
	}

	out := make(map[string]float64)
	digits := make([]byte, numSlots)
	total := 0.0

	for idx, p := range probs {
		if p <= 0 {
			continue
		}
		for j := range digits {
			digits[j] = '0'
		}
		for i, q := range measured {
			digits[numSlots-1-slots[i]] = outcomeDigits[min(subsystemLevel(idx, dims, q), maxLevel)]
		}
		out[string(digits)] += p
		total += p
	}

	if total <= 0 {
		return nil, fmt.Errorf("%w: state has no probability mass", ErrInputValidation)
	}
	for k := range out {
		out[k] /= total
	}

	return out, nil
}

// subsystemLevel is the level of subsystem q in basis index idx, subsystem 0 least significant.
func subsystemLevel(idx int, dims []int, q int) int {
	for k := 0; k < q; k++ {
		idx /= dims[k]
	}
	return idx % dims[q]
}

// sampleProbabilities draws shots outcomes, visiting outcomes in ascending order.
func sampleProbabilities[K cmp.Ordered](probs map[K]float64, shots int, rng *rand.Rand) []K {
	outcomes := slices.Sorted(maps.Keys(probs))

	cumulative := make([]float64, len(outcomes))
	acc := 0.0
	for i, k := range outcomes {
		acc += probs[k]
		cumulative[i] = acc
	}

	samples := make([]K, shots)
	for s := range samples {
		i := sort.SearchFloat64s(cumulative, rng.Float64()*acc)
		if i >= len(outcomes) {
			i = len(outcomes) - 1
		}
		samples[s] = outcomes[i]
	}

	return samples
}

// hexKeys converts sampled slot digits to hex outcome keys, each distinct outcome once.
func hexKeys(samples []string, maxLevel int) []string {
	seen := make(map[string]string)
	out := make([]string, len(samples))
	for i, digits := range samples {
		key, ok := seen[digits]
		if !ok {
			key = hexKey(digits, maxLevel+1)
			seen[digits] = key
		}
		out[i] = key
	}
	return out
}

func hexKey(digits string, base int) string {
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return "0x0"
	}
	return "0x" + v.Text(16)
}

func countsFromKeys(keys []string) map[string]int {
	counts := make(map[string]int)
	for _, k := range keys {
		counts[k]++
	}
	return counts
}

/*
iqData returns one row per shot and one IQ point per memory slot. Slots nobody
measures stay at zero.
*/
func iqData(
	probs []float64,
	dims []int,
	measured, slots []int,
	numSlots int,
	opts Options,
	rng *rand.Rand,
) ([][]complex128, error) {
	if product(dims) != len(probs) {
		return nil, fmt.Errorf(
			"%w: subsystem_dims %v inconsistent with state of dimension %d",
			ErrInputValidation, dims, len(probs),
		)
	}

	basis := make(map[int]float64, len(probs))
	for idx, p := range probs {
		if p > 0 {
			basis[idx] = p
		}
	}
	if len(basis) == 0 {
		return nil, fmt.Errorf("%w: state has no probability mass", ErrInputValidation)
	}

	centers := opts.IQCenters
	if centers == nil {
		centers = DefaultIQCenters(dims)
	}

	shots := sampleProbabilities(basis, opts.Shots, rng)
	out := make([][]complex128, len(shots))
	for s, idx := range shots {
		row := make([]complex128, numSlots)
		for i, q := range measured {
			center := centers[q][subsystemLevel(idx, dims, q)]
			row[slots[i]] = complex(
				center[0]+opts.IQWidth*rng.NormFloat64(),
				center[1]+opts.IQWidth*rng.NormFloat64(),
			)
		}
		out[s] = row
	}

	return out, nil
}

func averageIQ(iq [][]complex128, numSlots int) []complex128 {
	avg := make([]complex128, numSlots)
	if len(iq) == 0 {
		return avg
	}
	for _, row := range iq {
		for j, v := range row {
			avg[j] += v
		}
	}
	for j := range avg {
		avg[j] /= complex(float64(len(iq)), 0)
	}
	return avg
}

// DefaultIQCenters places level l of a d-level subsystem at angle 2πl/d on the unit circle.
func DefaultIQCenters(dims []int) [][][]float64 {
	centers := make([][][]float64, len(dims))
	for q, d := range dims {
		centers[q] = make([][]float64, d)
		for l := 0; l < d; l++ {
			theta := 2 * math.Pi * float64(l) / float64(d)
			centers[q][l] = []float64{math.Cos(theta), math.Sin(theta)}
		}
	}
	return centers
}

/*
decodeOutcome renders a hex outcome key as one digit per slot in base maxLevel+1,
highest slot first. Keys that are negative or need more than numSlots digits are
rejected.
*/
func decodeOutcome(key string, numSlots, maxLevel int) (string, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(key, "0x"), 16)
	if !ok || v.Sign() < 0 {
		return "", fmt.Errorf("%w: malformed outcome key %q", ErrInputValidation, key)
	}

	digits := v.Text(maxLevel + 1)
	if v.Sign() == 0 {
		digits = ""
	}
	if len(digits) > numSlots {
		return "", fmt.Errorf(
			"%w: outcome key %q does not fit %d memory slots in base %d",
			ErrInputValidation, key, numSlots, maxLevel+1,
		)
	}

	return strings.Repeat("0", numSlots-len(digits)) + digits, nil
}

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}
