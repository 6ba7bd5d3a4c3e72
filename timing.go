package dynamics

import (
	"fmt"
)

/*
AcquireTiming is what a schedule's measurement tells the simulation: how long to
evolve, which subsystems are read, and where each result is stored.
MeasuredSubsystems[i] is written to MemorySlots[i].
*/
type AcquireTiming struct {
	TSpan              [2]float64
	MeasuredSubsystems []int
	MemorySlots        []int
}

/*
AcquireTimings extracts an AcquireTiming from each schedule. Only acquires writing to
a memory slot count. Every schedule needs at least one, all of them at the same start
time, and each on a subsystem below len(subsystemDims). The span runs from 0 to the
acquire start in units of dt.
*/
func AcquireTimings(schedules []*Schedule, subsystemDims []int, dt float64) ([]AcquireTiming, error) {
	timings := make([]AcquireTiming, 0, len(schedules))

	for _, schedule := range schedules {
		timing, err := acquireTiming(schedule, subsystemDims, dt)
		if err != nil {
			return nil, err
		}
		timings = append(timings, timing)
	}

	return timings, nil
}

func acquireTiming(schedule *Schedule, subsystemDims []int, dt float64) (AcquireTiming, error) {
	var (
		acquires []Acquire
		times    []int
	)

	for _, item := range schedule.Instructions() {
		if acq, ok := item.Instruction.(Acquire); ok && acq.MemorySlot != NoSlot {
			acquires = append(acquires, acq)
			times = append(times, item.Start)
		}
	}

	if len(acquires) == 0 {
		return AcquireTiming{}, fmt.Errorf(
			"%w: at least one measurement saving a result in a memory slot must be present in schedule %q",
			ErrInputValidation, schedule.Name,
		)
	}

	for _, t := range times[1:] {
		if t != times[0] {
			return AcquireTiming{}, fmt.Errorf(
				"%w: backend only supports measurements at one time; schedule %q acquires at samples %d and %d",
				ErrInputValidation, schedule.Name, times[0], t,
			)
		}
	}

	timing := AcquireTiming{
		TSpan:              [2]float64{0, float64(times[0]) * dt},
		MeasuredSubsystems: make([]int, 0, len(acquires)),
		MemorySlots:        make([]int, 0, len(acquires)),
	}

	for _, acq := range acquires {
		if acq.Qubit < 0 || acq.Qubit >= len(subsystemDims) {
			return AcquireTiming{}, fmt.Errorf(
				"%w: attempted to measure out of bounds subsystem %d",
				ErrInputValidation, acq.Qubit,
			)
		}
		if subsystemDims[acq.Qubit] == 1 {
			warn(fmt.Sprintf("measuring trivial subsystem %d with dimension 1", acq.Qubit), "schedule", schedule.Name)
		}
		timing.MeasuredSubsystems = append(timing.MeasuredSubsystems, acq.Qubit)
		timing.MemorySlots = append(timing.MemorySlots, acq.MemorySlot)
	}

	return timing, nil
}
