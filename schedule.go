package dynamics

import (
	"sort"
)

// NoSlot marks an Acquire that does not write to a memory or register slot.
const NoSlot = -1

// Instruction is a single timed operation on one or more channels.
type Instruction interface {
	Duration() int
	Channels() []Channel
	isInstruction()
}

// Play emits a sampled complex waveform on a channel, one sample per dt.
type Play struct {
	Channel Channel
	Samples []complex128
	Name    string
}

func (p Play) Duration() int {
	return len(p.Samples)
}

func (p Play) Channels() []Channel {
	return []Channel{p.Channel}
}

func (Play) isInstruction() {}

// Delay idles a channel.
type Delay struct {
	Channel Channel
	Length  int
}

func (d Delay) Duration() int {
	return d.Length
}

func (d Delay) Channels() []Channel {
	return []Channel{d.Channel}
}

func (Delay) isInstruction() {}

// ShiftPhase adds to the phase of every later Play on the channel.
type ShiftPhase struct {
	Channel Channel
	Phase   float64
}

func (ShiftPhase) Duration() int {
	return 0
}

func (s ShiftPhase) Channels() []Channel {
	return []Channel{s.Channel}
}

func (ShiftPhase) isInstruction() {}

// SetPhase overrides the phase of every later Play on the channel.
type SetPhase struct {
	Channel Channel
	Phase   float64
}

func (SetPhase) Duration() int {
	return 0
}

func (s SetPhase) Channels() []Channel {
	return []Channel{s.Channel}
}

func (SetPhase) isInstruction() {}

/*
Acquire records the outcome of measuring a subsystem. MemorySlot and RegisterSlot are
NoSlot when unused; only acquires writing to a memory slot count as measurements.
*/
type Acquire struct {
	Qubit        int
	Length       int
	MemorySlot   int
	RegisterSlot int
}

// NewAcquire measures qubit into memory slot slot.
func NewAcquire(length, qubit, slot int) Acquire {
	return Acquire{Qubit: qubit, Length: length, MemorySlot: slot, RegisterSlot: NoSlot}
}

// NewRegisterAcquire measures qubit into a register slot only.
func NewRegisterAcquire(length, qubit, register int) Acquire {
	return Acquire{Qubit: qubit, Length: length, MemorySlot: NoSlot, RegisterSlot: register}
}

func (a Acquire) Duration() int {
	return a.Length
}

func (a Acquire) Channels() []Channel {
	return []Channel{A(a.Qubit)}
}

func (Acquire) isInstruction() {}

// Constant builds a waveform of n identical samples.
func Constant(n int, amp complex128) []complex128 {
	samples := make([]complex128, n)
	for i := range samples {
		samples[i] = amp
	}
	return samples
}

// ScheduleItem is an instruction pinned to a start time in samples.
type ScheduleItem struct {
	Start       int
	Instruction Instruction
}

// Stop is the first sample after the instruction.
func (it ScheduleItem) Stop() int {
	return it.Start + it.Instruction.Duration()
}

/*
Schedule is an ordered set of timed instructions on named channels. The builder
methods return the schedule so calls chain; once handed to a Backend it is only read.
*/
type Schedule struct {
	Name     string
	Metadata map[string]any
	items    []ScheduleItem
}

func NewSchedule(name string) *Schedule {
	return &Schedule{Name: name}
}

func (*Schedule) isInput() {}

// Insert places inst at an absolute start time. A negative start is clamped to 0.
func (s *Schedule) Insert(start int, inst Instruction) *Schedule {
	if start < 0 {
		start = 0
	}
	s.items = append(s.items, ScheduleItem{Start: start, Instruction: inst})
	return s
}

// Append places inst as early as possible after everything already on its channels.
func (s *Schedule) Append(inst Instruction) *Schedule {
	start := 0
	for _, ch := range inst.Channels() {
		if stop := s.ChannelStop(ch); stop > start {
			start = stop
		}
	}
	return s.Insert(start, inst)
}

// AppendSequential places inst after everything already in the schedule.
func (s *Schedule) AppendSequential(inst Instruction) *Schedule {
	return s.Insert(s.Duration(), inst)
}

// Duration is the stop time of the last instruction.
func (s *Schedule) Duration() int {
	stop := 0
	for _, it := range s.items {
		if it.Stop() > stop {
			stop = it.Stop()
		}
	}
	return stop
}

// ChannelStart is the earliest start on ch, or the schedule duration if ch is unused.
func (s *Schedule) ChannelStart(ch Channel) int {
	start, found := 0, false
	for _, it := range s.items {
		if !usesChannel(it.Instruction, ch) {
			continue
		}
		if !found || it.Start < start {
			start, found = it.Start, true
		}
	}
	if !found {
		return s.Duration()
	}
	return start
}

// ChannelStop is the latest stop on ch, or 0 if ch is unused.
func (s *Schedule) ChannelStop(ch Channel) int {
	stop := 0
	for _, it := range s.items {
		if usesChannel(it.Instruction, ch) && it.Stop() > stop {
			stop = it.Stop()
		}
	}
	return stop
}

// Channels lists every channel touched, in first-use order.
func (s *Schedule) Channels() []Channel {
	seen := make(map[Channel]bool)
	var out []Channel
	for _, it := range s.items {
		for _, ch := range it.Instruction.Channels() {
			if !seen[ch] {
				seen[ch] = true
				out = append(out, ch)
			}
		}
	}
	return out
}

// Instructions returns the items ordered by start time, ties kept in insertion order.
func (s *Schedule) Instructions() []ScheduleItem {
	out := make([]ScheduleItem, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

/*
AlignRight returns a copy of the schedule with every instruction pushed as late as
possible. Items are prepended in reverse insertion order: an item sharing channels
with what is already placed ends where those channels start, otherwise it ends with
the current schedule. Placed items shift right whenever a prepend would start before 0.
*/
func (s *Schedule) AlignRight() *Schedule {
	aligned := &Schedule{Name: s.Name, Metadata: s.Metadata}

	for i := len(s.items) - 1; i >= 0; i-- {
		inst := s.items[i].Instruction
		duration := inst.Duration()

		insertAt, shared := 0, false
		for _, ch := range inst.Channels() {
			if !aligned.hasChannel(ch) {
				continue
			}
			slack := aligned.ChannelStart(ch) - duration
			if !shared || slack < insertAt {
				insertAt, shared = slack, true
			}
		}
		if !shared {
			insertAt = aligned.Duration() - duration
		}

		if insertAt < 0 {
			for j := range aligned.items {
				aligned.items[j].Start -= insertAt
			}
			insertAt = 0
		}

		aligned.items = append([]ScheduleItem{{Start: insertAt, Instruction: inst}}, aligned.items...)
	}

	return aligned
}

func (s *Schedule) hasChannel(ch Channel) bool {
	for _, it := range s.items {
		if usesChannel(it.Instruction, ch) {
			return true
		}
	}
	return false
}

// memorySlotCount is one more than the highest memory slot written.
func (s *Schedule) memorySlotCount() int {
	count := 0
	for _, it := range s.items {
		if acq, ok := it.Instruction.(Acquire); ok && acq.MemorySlot+1 > count {
			count = acq.MemorySlot + 1
		}
	}
	return count
}

func usesChannel(inst Instruction, ch Channel) bool {
	for _, c := range inst.Channels() {
		if c == ch {
			return true
		}
	}
	return false
}
