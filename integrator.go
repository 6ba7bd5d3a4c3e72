package dynamics

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// SolverOptions tune the adaptive integrator.
type SolverOptions struct {
	Atol        float64 `mapstructure:"atol" yaml:"atol"`
	Rtol        float64 `mapstructure:"rtol" yaml:"rtol"`
	MaxSteps    int     `mapstructure:"max_steps" yaml:"max_steps"`
	InitialStep float64 `mapstructure:"initial_step" yaml:"initial_step"`
	MaxStep     float64 `mapstructure:"max_step" yaml:"max_step"`
}

func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Atol:     1e-8,
		Rtol:     1e-8,
		MaxSteps: 100000,
	}
}

func (o SolverOptions) withDefaults() SolverOptions {
	def := DefaultSolverOptions()
	if o.Atol <= 0 {
		o.Atol = def.Atol
	}
	if o.Rtol <= 0 {
		o.Rtol = def.Rtol
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = def.MaxSteps
	}
	return o
}

var (
	errStepTooSmall = errors.New("required step size is less than spacing between numbers")
	errMaxSteps     = errors.New("maximum number of steps exceeded")
)

// rhs writes dy/dt at (t, y) into dy.
type rhs func(t float64, y, dy []complex128)

// Dormand-Prince 5(4) tableau.
const (
	dpC2, dpC3, dpC4, dpC5 = 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9

	dpA21 = 1.0 / 5

	dpA31, dpA32 = 3.0 / 40, 9.0 / 40

	dpA41, dpA42, dpA43 = 44.0 / 45, -56.0 / 15, 32.0 / 9

	dpA51, dpA52, dpA53, dpA54 = 19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729

	dpA61, dpA62, dpA63, dpA64, dpA65 = 9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656

	dpB1, dpB3, dpB4, dpB5, dpB6 = 35.0 / 384, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84

	dpE1, dpE3, dpE4, dpE5, dpE6, dpE7 = 71.0 / 57600, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40
)

/*
dopri integrates an ODE with the Dormand-Prince 5(4) pair, reusing the last stage of
an accepted step as the first stage of the next. One instance carries its step size
and step count across consecutive intervals of the same solve.
*/
type dopri struct {
	f     rhs
	opts  SolverOptions
	h     float64
	steps int

	k [7][]complex128
	y []complex128
	w []complex128
}

func newDopri(f rhs, n int, opts SolverOptions) *dopri {
	d := &dopri{f: f, opts: opts.withDefaults(), h: opts.InitialStep}
	for i := range d.k {
		d.k[i] = make([]complex128, n)
	}
	d.y = make([]complex128, n)
	d.w = make([]complex128, n)
	return d
}

// integrate advances y in place from t0 to t1.
func (d *dopri) integrate(t0, t1 float64, y []complex128) error {
	span := t1 - t0
	if span <= 0 {
		return nil
	}

	d.f(t0, y, d.k[0])
	if d.h <= 0 {
		d.h = d.initialStep(span, y)
	}

	t := t0
	for t < t1 {
		if d.steps >= d.opts.MaxSteps {
			return errMaxSteps
		}

		h := math.Min(d.h, t1-t)
		if d.opts.MaxStep > 0 {
			h = math.Min(h, d.opts.MaxStep)
		}
		if h <= 16*epsilon(t) {
			return errStepTooSmall
		}

		errNorm := d.step(t, h, y)
		d.steps++
		if math.IsNaN(errNorm) {
			errNorm = math.Inf(1)
		}

		if errNorm <= 1 {
			t += h
			if t1-t <= 16*epsilon(t1) {
				t = t1
			}
			copy(y, d.y)
			d.k[0], d.k[6] = d.k[6], d.k[0]
		}

		factor := 10.0
		if errNorm > 0 {
			factor = math.Min(10, math.Max(0.2, 0.9*math.Pow(errNorm, -0.2)))
		}
		if errNorm > 1 {
			factor = math.Min(1, factor)
		}
		d.h = h * factor
	}

	return nil
}

// step attempts one step of size h and returns the scaled error norm.
func (d *dopri) step(t, h float64, y []complex128) float64 {
	k, w := d.k, d.w
	n := len(y)
	ch := complex(h, 0)

	for i := 0; i < n; i++ {
		w[i] = y[i] + ch*dpA21*k[0][i]
	}
	d.f(t+dpC2*h, w, k[1])

	for i := 0; i < n; i++ {
		w[i] = y[i] + ch*(dpA31*k[0][i]+dpA32*k[1][i])
	}
	d.f(t+dpC3*h, w, k[2])

	for i := 0; i < n; i++ {
		w[i] = y[i] + ch*(dpA41*k[0][i]+dpA42*k[1][i]+dpA43*k[2][i])
	}
	d.f(t+dpC4*h, w, k[3])

	for i := 0; i < n; i++ {
		w[i] = y[i] + ch*(dpA51*k[0][i]+dpA52*k[1][i]+dpA53*k[2][i]+dpA54*k[3][i])
	}
	d.f(t+dpC5*h, w, k[4])

	for i := 0; i < n; i++ {
		w[i] = y[i] + ch*(dpA61*k[0][i]+dpA62*k[1][i]+dpA63*k[2][i]+dpA64*k[3][i]+dpA65*k[4][i])
	}
	d.f(t+h, w, k[5])

	for i := 0; i < n; i++ {
		d.y[i] = y[i] + ch*(dpB1*k[0][i]+dpB3*k[2][i]+dpB4*k[3][i]+dpB5*k[4][i]+dpB6*k[5][i])
	}
	d.f(t+h, d.y, k[6])

	sum := 0.0
	for i := 0; i < n; i++ {
		e := ch * (dpE1*k[0][i] + dpE3*k[2][i] + dpE4*k[3][i] + dpE5*k[4][i] + dpE6*k[5][i] + dpE7*k[6][i])
		scale := d.opts.Atol + d.opts.Rtol*math.Max(cmplx.Abs(y[i]), cmplx.Abs(d.y[i]))
		r := cmplx.Abs(e) / scale
		sum += r * r
	}

	return math.Sqrt(sum / float64(n))
}

// initialStep follows the usual norm-ratio heuristic, capped by the span.
func (d *dopri) initialStep(span float64, y []complex128) float64 {
	var d0, d1 float64
	for i := range y {
		scale := d.opts.Atol + d.opts.Rtol*cmplx.Abs(y[i])
		d0 += math.Pow(cmplx.Abs(y[i])/scale, 2)
		d1 += math.Pow(cmplx.Abs(d.k[0][i])/scale, 2)
	}
	d0 = math.Sqrt(d0 / float64(len(y)))
	d1 = math.Sqrt(d1 / float64(len(y)))

	h := 1e-6
	if d0 > 1e-5 && d1 > 1e-5 {
		h = 0.01 * d0 / d1
	}

	return math.Min(h, span)
}

func epsilon(t float64) float64 {
	return math.Nextafter(math.Abs(t), math.Inf(1)) - math.Abs(t)
}

func integrationMessage(err error) string {
	if err == nil {
		return "integration successful"
	}
	return fmt.Sprintf("integration failed: %v", err)
}
