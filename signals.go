package dynamics

import (
	"math"
	"math/cmplx"
)

/*
envelopes samples the complex envelope of every channel over the schedule, one value
per dt sample. Phase instructions take effect on plays starting at or after them and
are folded into the samples, so the signal on channel i at sample k is
Re[env[i][k] * exp(i 2π ν t)].
*/
func envelopes(sched *Schedule, channels []Channel) [][]complex128 {
	duration := sched.Duration()
	index := make(map[Channel]int, len(channels))
	out := make([][]complex128, len(channels))
	for i, ch := range channels {
		index[ch] = i
		out[i] = make([]complex128, duration)
	}

	phases := make(map[Channel]float64)

	for _, item := range sched.Instructions() {
		switch inst := item.Instruction.(type) {
		case ShiftPhase:
			phases[inst.Channel] += inst.Phase
		case SetPhase:
			phases[inst.Channel] = inst.Phase
		case Play:
			i, ok := index[inst.Channel]
			if !ok {
				continue
			}
			rot := cmplx.Exp(complex(0, phases[inst.Channel]))
			for k, sample := range inst.Samples {
				out[i][item.Start+k] = sample * rot
			}
		}
	}

	return out
}

func envelopeAt(env [][]complex128, ch, k int) complex128 {
	if k < 0 || k >= len(env[ch]) {
		return 0
	}
	return env[ch][k]
}

// sameSample reports whether every channel holds the same envelope at samples j and k.
func sameSample(env [][]complex128, j, k int) bool {
	for ch := range env {
		if envelopeAt(env, ch, j) != envelopeAt(env, ch, k) {
			return false
		}
	}
	return true
}

// sampleIndex is the dt sample containing t, robust to boundary round-off.
func sampleIndex(t, dt float64) int {
	return int(math.Floor(t/dt + 1e-9))
}
