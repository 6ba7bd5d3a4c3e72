package dynamics

import (
	"context"
	"fmt"
	"maps"
	"math/rand/v2"
	"sync"

	"github.com/theapemachine/errnie"
)

// Input is something Backend.Run accepts: a *Schedule or a *Circuit.
type Input interface {
	isInput()
}

/*
Backend simulates pulse schedules on a Solver and samples measurement outcomes from the
evolved state. Options are swapped atomically by SetOptions; a Job keeps the options
it was created with.
*/
type Backend struct {
	mu      sync.RWMutex
	name    string
	solver  *Solver
	target  *Target
	options Options
	metrics *Metrics
}

/*
NewBackend wraps solver, which must be configured for pulse simulation. The target's
instruction-schedule map gains a one-sample measure for every subsystem that has none,
and subsystem_dims default to a single subsystem spanning the solver's dimension.
*/
func NewBackend(solver *Solver, target *Target, opts ...Option) (*Backend, error) {
	if solver == nil {
		return nil, fmt.Errorf("%w: backend needs a solver", ErrConfiguration)
	}
	if !solver.ConfiguredForPulse() {
		return nil, fmt.Errorf("%w: solver is not configured for pulse simulation, dt must be positive", ErrConfiguration)
	}

	options, err := DefaultOptions().With(
		solver.Dim(),
		append([]Option{WithSubsystemDims(solver.Dim())}, opts...)...,
	)
	if err != nil {
		return nil, err
	}

	t := &Target{Dt: solver.Dt()}
	if target != nil {
		t.QubitProperties = target.QubitProperties
		if target.Dt > 0 {
			t.Dt = target.Dt
		}
		t.InstructionSchedules = target.InstructionSchedules
	}
	t.InstructionSchedules = withDefaultMeasures(t.InstructionSchedules, len(options.SubsystemDims))

	errnie.Info(
		"NewBackend - dim %d, subsystem_dims %v, channels %v, dt %v",
		solver.Dim(),
		options.SubsystemDims,
		solver.Channels(),
		solver.Dt(),
	)

	return &Backend{
		name:    "DynamicsBackend",
		solver:  solver,
		target:  t,
		options: options,
		metrics: NewMetrics(),
	}, nil
}

// withDefaultMeasures copies m and adds a measure entry for every qubit missing one.
func withDefaultMeasures(m *InstructionScheduleMap, numQubits int) *InstructionScheduleMap {
	out := NewInstructionScheduleMap()
	if m != nil {
		maps.Copy(out.schedules, m.schedules)
	}
	for q := 0; q < numQubits; q++ {
		if !out.Has(measureGate, []int{q}) {
			out.Add(measureGate, []int{q}, defaultMeasureSchedule(q))
		}
	}
	return out
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Solver() *Solver { return b.solver }

func (b *Backend) Metrics() *Metrics { return b.metrics }

func (b *Backend) Options() Options {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.options
}

func (b *Backend) Target() *Target {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.target
}

/*
SetOptions validates the edited options as a whole and installs them, or returns an
error and leaves the backend untouched.
*/
func (b *Backend) SetOptions(opts ...Option) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := b.options.With(b.solver.Dim(), opts...)
	if err != nil {
		return err
	}

	if len(next.SubsystemDims) != len(b.options.SubsystemDims) {
		t := *b.target
		t.InstructionSchedules = withDefaultMeasures(t.InstructionSchedules, len(next.SubsystemDims))
		b.target = &t
	}
	b.options = next

	return nil
}

/*
Run validates every input, extracts its measurement timing, and returns a Job that
simulates them in order once its Result is requested. Any invalid input fails the whole
call before anything is simulated. opts apply to this run only.
*/
func (b *Backend) Run(inputs []Input, opts ...Option) (*Job, error) {
	options, target := b.Options(), b.Target()

	if len(opts) > 0 {
		var err error
		if options, err = options.With(b.solver.Dim(), opts...); err != nil {
			return nil, err
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no experiments to run", ErrInputValidation)
	}

	schedules, slots, metadata, err := b.lower(inputs, target)
	if err != nil {
		return nil, err
	}

	timings, err := AcquireTimings(schedules, options.SubsystemDims, b.solver.Dt())
	if err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if options.SeedSimulator != nil {
		seed = *options.SeedSimulator
	}

	experiments := make([]experiment, len(schedules))
	for i, s := range schedules {
		experiments[i] = experiment{
			name:     s.Name,
			schedule: s,
			timing:   timings[i],
			numSlots: slots[i],
			seed:     seed + uint64(i),
			metadata: metadata[i],
		}
	}

	job := newJob(b, options, experiments)
	errnie.Info("Run - job %s, experiments %d, shots %d", job.ID, len(experiments), options.Shots)

	return job, nil
}

// lower turns run inputs into schedules with their memory slot counts and metadata.
func (b *Backend) lower(inputs []Input, target *Target) ([]*Schedule, []int, []map[string]any, error) {
	schedules := make([]*Schedule, len(inputs))
	slots := make([]int, len(inputs))
	metadata := make([]map[string]any, len(inputs))

	for i, input := range inputs {
		switch in := input.(type) {
		case *Schedule:
			if in == nil {
				return nil, nil, nil, unsupportedInput(i, input)
			}
			schedules[i] = in
			slots[i] = in.memorySlotCount()
			metadata[i] = in.Metadata

		case *Circuit:
			if in == nil {
				return nil, nil, nil, unsupportedInput(i, input)
			}
			s, err := in.toSchedule(target.InstructionSchedules)
			if err != nil {
				return nil, nil, nil, err
			}
			schedules[i] = s
			slots[i] = in.NumClbits
			metadata[i] = in.Metadata

		default:
			return nil, nil, nil, unsupportedInput(i, input)
		}
	}

	return schedules, slots, metadata, nil
}

func unsupportedInput(i int, input Input) error {
	return fmt.Errorf("%w: input %d of type %T is not supported by Backend.Run", ErrInputValidation, i, input)
}

/*
Solve evolves y0 under each input without sampling. A nil tSpan runs each schedule from
0 to its end; a nil y0 uses the initial_state option, else the ground state.
*/
func (b *Backend) Solve(ctx context.Context, tSpan *[2]float64, y0 State, inputs []Input) ([]*SolverResult, error) {
	options, target := b.Options(), b.Target()

	schedules, _, _, err := b.lower(inputs, target)
	if err != nil {
		return nil, err
	}

	if y0 == nil {
		if y0, err = b.initialState(options); err != nil {
			return nil, err
		}
	}

	results := make([]*SolverResult, len(schedules))
	for i, s := range schedules {
		span := [2]float64{0, float64(s.Duration()) * b.solver.Dt()}
		if tSpan != nil {
			span = *tSpan
		}
		if results[i], err = b.solver.Solve(ctx, span, y0, s, options.SolverOptions); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (b *Backend) initialState(options Options) (State, error) {
	if options.InitialState != nil {
		return options.InitialState, nil
	}
	return groundState(b.solver.StaticHamiltonian(), b.solver.Dim())
}

func (b *Backend) numQubits() int {
	return len(b.Options().SubsystemDims)
}

func (b *Backend) qubitChannel(kind string, qubit int, ch func(int) Channel) (Channel, error) {
	if qubit < 0 || qubit >= b.numQubits() {
		return Channel{}, fmt.Errorf("%w: %s requested for qubit %d which is out of bounds", ErrLookup, kind, qubit)
	}
	return ch(qubit), nil
}

func (b *Backend) DriveChannel(qubit int) (Channel, error) {
	return b.qubitChannel("drive_channel", qubit, D)
}

func (b *Backend) MeasureChannel(qubit int) (Channel, error) {
	return b.qubitChannel("measure_channel", qubit, M)
}

func (b *Backend) AcquireChannel(qubit int) (Channel, error) {
	return b.qubitChannel("acquire_channel", qubit, A)
}

// ControlChannel returns the control channels driving pair, per the control_channel_map option.
func (b *Backend) ControlChannel(pair QubitPair) ([]Channel, error) {
	m := b.Options().ControlChannelMap
	if m == nil {
		return nil, fmt.Errorf("%w: control_channel_map was never configured", ErrUnsupported)
	}

	index, ok := m[pair]
	if !ok {
		return nil, fmt.Errorf("%w: key %v not in control_channel_map", ErrLookup, pair)
	}

	return []Channel{U(index)}, nil
}
