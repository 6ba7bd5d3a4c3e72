package dynamics

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
)

/*
SolverConfig describes a pulse-driven Hamiltonian

	H(t) = H0 + Σ_i Re[a_i(t) exp(i 2π ν_i t)] O_i

where O_i is driven by the channel HamiltonianChannels[i] with carrier ν_i and envelope
a_i taken from the schedule being simulated. RotatingFrame, when set, must be diagonal;
RWACutoffFreq, when positive, drops every frame-rotated term oscillating faster than it.
*/
type SolverConfig struct {
	StaticHamiltonian    *Matrix
	HamiltonianOperators []*Matrix
	HamiltonianChannels  []string
	ChannelCarrierFreqs  map[string]float64
	Dt                   float64
	RotatingFrame        *Matrix
	RWACutoffFreq        float64
}

/*
WithCalibratedCarriers returns a copy of the config whose carrier frequencies are
resolved from device calibration data.
*/
func (cfg SolverConfig) WithCalibratedCarriers(
	target *Target,
	config *Configuration,
	defaults *Defaults,
) (SolverConfig, error) {
	freqs, err := ChannelFrequencies(target, config, defaults, cfg.HamiltonianChannels)
	if err != nil {
		return cfg, err
	}
	cfg.ChannelCarrierFreqs = freqs
	return cfg, nil
}

// term is one matrix element coeff * exp(i omega t) of the frame-rotated Hamiltonian.
type term struct {
	row, col int
	coeff    complex128
	omega    float64
	// channel is the driving channel index, or -1 for the static part.
	channel int
	conj    bool
}

// Solver integrates the Schrödinger or von Neumann equation for a SolverConfig.
type Solver struct {
	config   SolverConfig
	dim      int
	channels []Channel
	terms    []term
}

func NewSolver(cfg SolverConfig) (*Solver, error) {
	dim, err := hamiltonianDim(cfg)
	if err != nil {
		return nil, err
	}

	if len(cfg.HamiltonianChannels) != len(cfg.HamiltonianOperators) {
		return nil, fmt.Errorf(
			"%w: %d hamiltonian operators but %d hamiltonian channels",
			ErrConfiguration, len(cfg.HamiltonianOperators), len(cfg.HamiltonianChannels),
		)
	}

	solver := &Solver{config: cfg, dim: dim}

	for _, name := range cfg.HamiltonianChannels {
		ch, err := ParseChannel(name)
		if err != nil {
			return nil, err
		}
		if _, ok := cfg.ChannelCarrierFreqs[name]; !ok {
			return nil, fmt.Errorf("%w: no carrier frequency for channel %q", ErrConfiguration, name)
		}
		solver.channels = append(solver.channels, ch)
	}

	frame := make([]float64, dim)
	if f := cfg.RotatingFrame; f != nil {
		if f.Rows != dim || f.Cols != dim || !f.IsDiagonal() {
			return nil, fmt.Errorf("%w: rotating frame must be a diagonal %dx%d matrix", ErrConfiguration, dim, dim)
		}
		for i := range frame {
			frame[i] = real(f.At(i, i))
		}
	}

	keep := func(omega float64) bool {
		return cfg.RWACutoffFreq <= 0 || math.Abs(omega)/(2*math.Pi) <= cfg.RWACutoffFreq
	}

	for j := 0; j < dim; j++ {
		for k := 0; k < dim; k++ {
			delta := frame[j] - frame[k]

			if h0 := cfg.StaticHamiltonian; h0 != nil {
				c := h0.At(j, k)
				if j == k {
					c -= complex(frame[j], 0)
				}
				if c != 0 && keep(delta) {
					solver.terms = append(solver.terms, term{row: j, col: k, coeff: c, omega: delta, channel: -1})
				}
			}

			for i, op := range cfg.HamiltonianOperators {
				c := op.At(j, k)
				if c == 0 {
					continue
				}
				w := 2 * math.Pi * cfg.ChannelCarrierFreqs[cfg.HamiltonianChannels[i]]
				if keep(w + delta) {
					solver.terms = append(solver.terms, term{row: j, col: k, coeff: 0.5 * c, omega: w + delta, channel: i})
				}
				if keep(-w + delta) {
					solver.terms = append(solver.terms, term{row: j, col: k, coeff: 0.5 * c, omega: -w + delta, channel: i, conj: true})
				}
			}
		}
	}

	return solver, nil
}

func hamiltonianDim(cfg SolverConfig) (int, error) {
	dim := 0
	check := func(m *Matrix, what string) error {
		if !m.IsSquare() {
			return fmt.Errorf("%w: %s must be square, got %dx%d", ErrConfiguration, what, m.Rows, m.Cols)
		}
		if dim != 0 && m.Rows != dim {
			return fmt.Errorf("%w: %s has dimension %d, expected %d", ErrConfiguration, what, m.Rows, dim)
		}
		dim = m.Rows
		return nil
	}

	if cfg.StaticHamiltonian != nil {
		if err := check(cfg.StaticHamiltonian, "static hamiltonian"); err != nil {
			return 0, err
		}
	}
	for i, op := range cfg.HamiltonianOperators {
		if op == nil {
			return 0, fmt.Errorf("%w: hamiltonian operator %d is nil", ErrConfiguration, i)
		}
		if err := check(op, fmt.Sprintf("hamiltonian operator %d", i)); err != nil {
			return 0, err
		}
	}

	if dim == 0 {
		return 0, fmt.Errorf("%w: solver needs a static hamiltonian or hamiltonian operators", ErrConfiguration)
	}
	return dim, nil
}

// Dim is the dimension of the simulated Hilbert space.
func (s *Solver) Dim() int { return s.dim }

func (s *Solver) Dt() float64 { return s.config.Dt }

// ConfiguredForPulse reports whether the solver can simulate schedules.
func (s *Solver) ConfiguredForPulse() bool { return s.config.Dt > 0 }

// Channels lists the channel names driving the Hamiltonian.
func (s *Solver) Channels() []string {
	out := make([]string, len(s.config.HamiltonianChannels))
	copy(out, s.config.HamiltonianChannels)
	return out
}

func (s *Solver) StaticHamiltonian() *Matrix {
	if s.config.StaticHamiltonian == nil {
		return nil
	}
	return s.config.StaticHamiltonian.Clone()
}

/*
SolverResult holds the states at the ends of the requested span. A failed integration
sets Success to false, leaves Message describing why, and carries the state reached.
*/
type SolverResult struct {
	T       []float64
	Y       []State
	Success bool
	Message string
	Steps   int
}

// Final is the state at the end of the span.
func (r *SolverResult) Final() State {
	if r == nil || len(r.Y) == 0 {
		return nil
	}
	return r.Y[len(r.Y)-1]
}

/*
Solve evolves y0 over tSpan under the Hamiltonian driven by sched, which may be nil for
free evolution. States are expressed in the rotating frame.

The span is cut at every dt boundary where some channel's envelope changes, and each
piece is integrated with a constant envelope.
*/
func (s *Solver) Solve(
	ctx context.Context,
	tSpan [2]float64,
	y0 State,
	sched *Schedule,
	opts SolverOptions,
) (*SolverResult, error) {
	if y0 == nil {
		return nil, fmt.Errorf("%w: initial state is nil", ErrInputValidation)
	}
	if y0.Dim() != s.dim {
		return nil, fmt.Errorf(
			"%w: initial state of dimension %d does not match solver dimension %d",
			ErrInputValidation, y0.Dim(), s.dim,
		)
	}
	if tSpan[1] < tSpan[0] {
		return nil, fmt.Errorf("%w: t_span %v runs backwards", ErrInputValidation, tSpan)
	}
	if sched != nil && !s.ConfiguredForPulse() {
		return nil, fmt.Errorf("%w: solver not configured for pulse simulation", ErrUnsupported)
	}

	var env [][]complex128
	if sched != nil && len(s.channels) > 0 {
		env = envelopes(sched, s.channels)
	}

	d := s.dim
	h := NewMatrix(d, d, nil)
	coeffs := make([]complex128, len(s.terms))

	f := func(t float64, y, dy []complex128) {
		for i := range h.Data {
			h.Data[i] = 0
		}
		for i, tm := range s.terms {
			if coeffs[i] == 0 {
				continue
			}
			h.Data[tm.row*d+tm.col] += coeffs[i] * cmplx.Exp(complex(0, tm.omega*t))
		}
		y0.generate(h, y, dy)
	}

	setSample := func(k int) {
		for i, tm := range s.terms {
			if tm.channel < 0 {
				coeffs[i] = tm.coeff
				continue
			}
			a := complex128(0)
			if env != nil {
				a = envelopeAt(env, tm.channel, k)
			}
			if tm.conj {
				a = cmplx.Conj(a)
			}
			coeffs[i] = tm.coeff * a
		}
	}

	y := y0.vector()
	integrator := newDopri(f, len(y), opts)
	result := &SolverResult{T: []float64{tSpan[0], tSpan[1]}, Success: true}

	t := tSpan[0]
	for t < tSpan[1] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, k := tSpan[1], 0
		if env != nil {
			dt := s.config.Dt
			k = sampleIndex(t, dt)
			j := k + 1
			for float64(j)*dt < tSpan[1] && sameSample(env, k, j) {
				j++
			}
			if b := float64(j) * dt; b < tSpan[1] {
				next = b
			}
		}

		setSample(k)
		if err := integrator.integrate(t, next, y); err != nil {
			result.Success = false
			result.Message = integrationMessage(err)
			break
		}
		t = next
	}

	if result.Success {
		result.Message = integrationMessage(nil)
	}
	result.Steps = integrator.steps
	result.Y = []State{y0, y0.fromVector(y)}

	return result, nil
}
