package dynamics

import (
	"fmt"
	"sort"
)

// InstructionScheduleMap maps a gate name on a set of qubits to its pulse schedule.
type InstructionScheduleMap struct {
	schedules map[string]*Schedule
}

func NewInstructionScheduleMap() *InstructionScheduleMap {
	return &InstructionScheduleMap{
		schedules: make(map[string]*Schedule),
	}
}

// Add registers s as the implementation of name on qubits, replacing any previous entry.
func (m *InstructionScheduleMap) Add(name string, qubits []int, s *Schedule) {
	m.schedules[scheduleKey(name, qubits)] = s
}

func (m *InstructionScheduleMap) Get(name string, qubits []int) (*Schedule, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m.schedules[scheduleKey(name, qubits)]
	return s, ok
}

func (m *InstructionScheduleMap) Has(name string, qubits []int) bool {
	_, ok := m.Get(name, qubits)
	return ok
}

// Keys lists the registered entries, sorted.
func (m *InstructionScheduleMap) Keys() []string {
	keys := make([]string, 0, len(m.schedules))
	for k := range m.schedules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scheduleKey(name string, qubits []int) string {
	return fmt.Sprintf("%s%v", name, qubits)
}

// defaultMeasureSchedule acquires qubit for one sample into memory slot qubit.
func defaultMeasureSchedule(qubit int) *Schedule {
	return NewSchedule(fmt.Sprintf("measure_%d", qubit)).
		Insert(0, NewAcquire(1, qubit, qubit))
}
