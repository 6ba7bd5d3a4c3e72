package dynamics

import (
	"fmt"
	"slices"
)

const measureGate = "measure"

// Gate is one named operation on qubits; measure gates also name their classical bits.
type Gate struct {
	Name   string
	Qubits []int
	Clbits []int
}

/*
Circuit is a gate sequence whose gates are implemented by pulse schedules, either its
own calibrations or the schedules a backend's target provides.
*/
type Circuit struct {
	Name      string
	NumQubits int
	NumClbits int
	Gates     []Gate
	Metadata  map[string]any

	calibrations *InstructionScheduleMap
}

func NewCircuit(name string, numQubits, numClbits int) *Circuit {
	return &Circuit{
		Name:         name,
		NumQubits:    numQubits,
		NumClbits:    numClbits,
		calibrations: NewInstructionScheduleMap(),
	}
}

func (*Circuit) isInput() {}

func (c *Circuit) Append(name string, qubits ...int) *Circuit {
	c.Gates = append(c.Gates, Gate{Name: name, Qubits: slices.Clone(qubits)})
	return c
}

// Measure reads qubit into classical bit clbit.
func (c *Circuit) Measure(qubit, clbit int) *Circuit {
	c.Gates = append(c.Gates, Gate{Name: measureGate, Qubits: []int{qubit}, Clbits: []int{clbit}})
	return c
}

// AddCalibration implements gate name on qubits with s for this circuit only.
func (c *Circuit) AddCalibration(name string, qubits []int, s *Schedule) *Circuit {
	c.calibrations.Add(name, qubits, s)
	return c
}

func (c *Circuit) lookup(name string, qubits []int, instMap *InstructionScheduleMap) (*Schedule, error) {
	if s, ok := c.calibrations.Get(name, qubits); ok {
		return s, nil
	}
	if s, ok := instMap.Get(name, qubits); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: no schedule for gate %q on qubits %v in circuit %q", ErrLookup, name, qubits, c.Name)
}

/*
toSchedule lowers the circuit to one schedule. Gates start as soon as their qubits and
channels are free. A run of consecutive measure gates starts together once everything
before it has finished, and each acquire is redirected to the gate's classical bit.
*/
func (c *Circuit) toSchedule(instMap *InstructionScheduleMap) (*Schedule, error) {
	out := NewSchedule(c.Name)
	out.Metadata = c.Metadata
	ready := make(map[int]int)

	for i := 0; i < len(c.Gates); i++ {
		gate := c.Gates[i]
		for _, q := range gate.Qubits {
			if q < 0 || q >= c.NumQubits {
				return nil, fmt.Errorf(
					"%w: gate %q acts on qubit %d outside circuit %q of %d qubits",
					ErrInputValidation, gate.Name, q, c.Name, c.NumQubits,
				)
			}
		}

		if gate.Name != measureGate {
			s, err := c.lookup(gate.Name, gate.Qubits, instMap)
			if err != nil {
				return nil, err
			}

			start := 0
			for _, q := range gate.Qubits {
				start = max(start, ready[q])
			}
			for _, ch := range s.Channels() {
				start = max(start, out.ChannelStop(ch))
			}
			for _, item := range s.Instructions() {
				out.Insert(start+item.Start, item.Instruction)
			}
			for _, q := range gate.Qubits {
				ready[q] = start + s.Duration()
			}
			continue
		}

		start := out.Duration()
		for ; i < len(c.Gates) && c.Gates[i].Name == measureGate; i++ {
			if err := c.placeMeasure(out, c.Gates[i], start, instMap, ready); err != nil {
				return nil, err
			}
		}
		i--
	}

	return out, nil
}

func (c *Circuit) placeMeasure(
	out *Schedule,
	gate Gate,
	start int,
	instMap *InstructionScheduleMap,
	ready map[int]int,
) error {
	if len(gate.Qubits) != 1 || len(gate.Clbits) != 1 {
		return fmt.Errorf("%w: measure gate needs one qubit and one clbit, got %v", ErrInputValidation, gate)
	}

	qubit, clbit := gate.Qubits[0], gate.Clbits[0]
	if clbit < 0 || clbit >= c.NumClbits {
		return fmt.Errorf(
			"%w: measure writes clbit %d outside circuit %q of %d clbits",
			ErrInputValidation, clbit, c.Name, c.NumClbits,
		)
	}

	s, err := c.lookup(measureGate, gate.Qubits, instMap)
	if err != nil {
		return err
	}

	for _, item := range s.Instructions() {
		inst := item.Instruction
		if acq, ok := inst.(Acquire); ok && acq.Qubit == qubit && acq.MemorySlot != NoSlot {
			acq.MemorySlot = clbit
			inst = acq
		}
		out.Insert(start+item.Start, inst)
	}
	ready[qubit] = start + s.Duration()

	return nil
}
