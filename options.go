package dynamics

import (
	"fmt"
	"maps"
	"slices"
)

// MeasReturn selects per-shot or shot-averaged level 1 data.
type MeasReturn string

const (
	MeasReturnSingle MeasReturn = "single"
	MeasReturnAvg    MeasReturn = "avg"
)

const maxOutcomeLevelLimit = len(outcomeDigits) - 1

/*
Options are the run-time settings of a Backend. A value is never mutated once a
backend holds it: With returns a validated copy, and the backend swaps it in whole.
*/
type Options struct {
	Shots         int
	SolverOptions SolverOptions
	SubsystemDims []int
	// ControlChannelMap maps a qubit pair to the index of the control channel driving it.
	ControlChannelMap map[QubitPair]int
	// InitialState nil means the ground state of the static Hamiltonian.
	InitialState             State
	MeasLevel                int
	MeasReturn               MeasReturn
	IQCenters                [][][]float64
	IQWidth                  float64
	MaxOutcomeLevel          int
	Memory                   bool
	SeedSimulator            *uint64
	ExperimentResultFunction ExperimentResultFunction
}

// Option edits a copy of Options.
type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Shots:                    1024,
		SolverOptions:            DefaultSolverOptions(),
		MeasLevel:                2,
		MeasReturn:               MeasReturnAvg,
		IQWidth:                  0.2,
		MaxOutcomeLevel:          1,
		Memory:                   true,
		ExperimentResultFunction: defaultResultFunction{},
	}
}

func WithShots(shots int) Option {
	return func(o *Options) { o.Shots = shots }
}

func WithSolverOptions(solverOptions SolverOptions) Option {
	return func(o *Options) { o.SolverOptions = solverOptions }
}

func WithSubsystemDims(dims ...int) Option {
	dims = slices.Clone(dims)
	return func(o *Options) { o.SubsystemDims = dims }
}

func WithControlChannelMap(m map[QubitPair]int) Option {
	m = maps.Clone(m)
	return func(o *Options) { o.ControlChannelMap = m }
}

func WithInitialState(state State) Option {
	return func(o *Options) { o.InitialState = state }
}

func WithMeasLevel(level int) Option {
	return func(o *Options) { o.MeasLevel = level }
}

func WithMeasReturn(mode MeasReturn) Option {
	return func(o *Options) { o.MeasReturn = mode }
}

// WithIQCenters sets centers[subsystem][level] = {I, Q}.
func WithIQCenters(centers [][][]float64) Option {
	var cp [][][]float64
	if centers != nil {
		cp = make([][][]float64, len(centers))
		for q, levels := range centers {
			cp[q] = make([][]float64, len(levels))
			for l, point := range levels {
				cp[q][l] = slices.Clone(point)
			}
		}
	}
	return func(o *Options) { o.IQCenters = cp }
}

func WithIQWidth(width float64) Option {
	return func(o *Options) { o.IQWidth = width }
}

func WithMaxOutcomeLevel(level int) Option {
	return func(o *Options) { o.MaxOutcomeLevel = level }
}

func WithMemory(memory bool) Option {
	return func(o *Options) { o.Memory = memory }
}

// WithSeed fixes the base seed; experiment i is sampled with seed+i.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.SeedSimulator = &seed }
}

func WithExperimentResultFunction(fn ExperimentResultFunction) Option {
	return func(o *Options) { o.ExperimentResultFunction = fn }
}

/*
With applies opts to a copy and validates the result against a model of dimension
dim. On error the receiver is unchanged and the zero Options is returned.
*/
func (o Options) With(dim int, opts ...Option) (Options, error) {
	next := o
	for _, opt := range opts {
		opt(&next)
	}
	if err := next.Validate(dim); err != nil {
		return Options{}, err
	}
	return next, nil
}

// Validate checks every option against a model of dimension dim.
func (o Options) Validate(dim int) error {
	if o.Shots <= 0 {
		return fmt.Errorf("%w: shots must be a positive integer, got %d", ErrConfiguration, o.Shots)
	}

	dims := o.SubsystemDims
	if len(dims) == 0 {
		dims = []int{dim}
	}
	for _, d := range dims {
		if d <= 0 {
			return fmt.Errorf("%w: subsystem_dims %v must be positive", ErrConfiguration, dims)
		}
	}
	if product(dims) != dim {
		return fmt.Errorf(
			"%w: subsystem_dims %v inconsistent with dimension %d of solver model",
			ErrConfiguration, dims, dim,
		)
	}

	if o.MaxOutcomeLevel < 1 {
		return fmt.Errorf("%w: max_outcome_level must be a positive integer, got %d", ErrConfiguration, o.MaxOutcomeLevel)
	}
	if o.MaxOutcomeLevel > maxOutcomeLevelLimit {
		return fmt.Errorf("%w: max_outcome_level %d exceeds %d", ErrConfiguration, o.MaxOutcomeLevel, maxOutcomeLevelLimit)
	}

	if o.MeasLevel != 1 && o.MeasLevel != 2 {
		return fmt.Errorf("%w: only meas_level 1 and 2 are supported, got %d", ErrConfiguration, o.MeasLevel)
	}
	if o.MeasReturn != MeasReturnSingle && o.MeasReturn != MeasReturnAvg {
		return fmt.Errorf("%w: meas_return must be either 'single' or 'avg', got %q", ErrConfiguration, o.MeasReturn)
	}
	if o.IQWidth <= 0 {
		return fmt.Errorf("%w: iq_width must be a positive float, got %v", ErrConfiguration, o.IQWidth)
	}

	if err := validateIQCenters(o.IQCenters, dims); err != nil {
		return err
	}

	if s := o.InitialState; s != nil {
		kind := s.Kind()
		if (kind != StatevectorKind && kind != DensityMatrixKind) || s.Dim() != dim {
			return fmt.Errorf(
				"%w: initial_state must be either nil, a Statevector or a DensityMatrix of dimension %d, got %v of dimension %d",
				ErrConfiguration, dim, kind, s.Dim(),
			)
		}
	}

	if !callable(o.ExperimentResultFunction) {
		return fmt.Errorf("%w: experiment_result_function must be callable", ErrConfiguration)
	}

	for pair, index := range o.ControlChannelMap {
		if index < 0 {
			return fmt.Errorf(
				"%w: control_channel_map values must be non-negative, got %d for %v",
				ErrConfiguration, index, pair,
			)
		}
	}

	if o.SolverOptions.Atol < 0 || o.SolverOptions.Rtol < 0 || o.SolverOptions.MaxSteps < 0 {
		return fmt.Errorf("%w: solver_options must be non-negative, got %+v", ErrConfiguration, o.SolverOptions)
	}

	return nil
}

func validateIQCenters(centers [][][]float64, dims []int) error {
	if centers == nil {
		return nil
	}

	for _, levels := range centers {
		for _, point := range levels {
			if len(point) != 2 {
				return fmt.Errorf(
					"%w: iq_centers option must be either nil or a nested list of shape (subsystems, levels, 2)",
					ErrConfiguration,
				)
			}
		}
	}

	if len(centers) != len(dims) {
		return fmt.Errorf("%w: iq_centers option is not consistent with subsystem_dims %v", ErrConfiguration, dims)
	}
	for q, levels := range centers {
		if len(levels) != dims[q] {
			return fmt.Errorf("%w: iq_centers option is not consistent with subsystem_dims %v", ErrConfiguration, dims)
		}
	}

	return nil
}

func callable(fn ExperimentResultFunction) bool {
	if fn == nil {
		return false
	}
	if f, ok := fn.(ExperimentResultFunc); ok && f == nil {
		return false
	}
	return true
}
