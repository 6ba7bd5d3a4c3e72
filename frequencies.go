package dynamics

import (
	"fmt"
)

// QubitProperties carries the calibrated frequency of one qubit.
type QubitProperties struct {
	Frequency float64
}

/*
Target describes the device a backend simulates: its sample time, per-qubit
properties, and the schedules that implement named gates.
*/
type Target struct {
	Dt                   float64
	QubitProperties      []QubitProperties
	InstructionSchedules *InstructionScheduleMap
}

// UChannelLO is one local-oscillator contribution to a control channel.
type UChannelLO struct {
	Q     int     `yaml:"q"`
	Scale float64 `yaml:"scale"`
}

// Configuration is the legacy device configuration.
type Configuration struct {
	Dt         float64
	UChannelLO [][]UChannelLO
}

// Defaults is the legacy per-qubit frequency estimate record.
type Defaults struct {
	QubitFreqEst []float64
	MeasFreqEst  []float64
}

/*
ChannelFrequencies resolves the carrier frequency of every named channel.

Drive channels take the qubit frequency at their index, preferring the target's qubit
properties over the defaults' estimates. Measurement channels take the defaults'
measurement estimate. Control channel i is the weighted sum of drive frequencies over
the local-oscillator entries registered at index i in the configuration.
*/
func ChannelFrequencies(
	target *Target,
	config *Configuration,
	defaults *Defaults,
	channels []string,
) (map[string]float64, error) {
	parsed := make([]Channel, len(channels))
	var needDrive, needMeas, needControl bool

	for i, name := range channels {
		ch, err := ParseChannel(name)
		if err != nil {
			return nil, err
		}
		switch ch.Kind {
		case DriveChannel:
			needDrive = true
		case MeasureChannel:
			needMeas = true
		case ControlChannel:
			needDrive = true
			needControl = true
		default:
			return nil, fmt.Errorf("%w: unrecognized channel type requested: %q", ErrConfiguration, name)
		}
		parsed[i] = ch
	}

	var driveFreqs []float64
	switch {
	case target != nil && len(target.QubitProperties) > 0:
		driveFreqs = make([]float64, len(target.QubitProperties))
		for i, props := range target.QubitProperties {
			driveFreqs[i] = props.Frequency
		}
	case defaults != nil && defaults.QubitFreqEst != nil:
		driveFreqs = defaults.QubitFreqEst
	case needDrive:
		return nil, fmt.Errorf(
			"%w: DriveChannels in model but frequencies not available in target or defaults",
			ErrLookup,
		)
	}

	var measFreqs []float64
	if needMeas {
		if defaults == nil || defaults.MeasFreqEst == nil {
			return nil, fmt.Errorf(
				"%w: MeasureChannels in model but defaults does not have meas_freq_est",
				ErrLookup,
			)
		}
		measFreqs = defaults.MeasFreqEst
	}

	var uChannelLO [][]UChannelLO
	if needControl {
		if config == nil || config.UChannelLO == nil {
			return nil, fmt.Errorf(
				"%w: ControlChannels in model but configuration does not have u_channel_lo defined",
				ErrLookup,
			)
		}
		uChannelLO = config.UChannelLO
	}

	freqs := make(map[string]float64, len(channels))
	for i, ch := range parsed {
		switch ch.Kind {
		case DriveChannel:
			if ch.Index >= len(driveFreqs) {
				return nil, fmt.Errorf("%w: DriveChannel index %d is out of bounds", ErrLookup, ch.Index)
			}
			freqs[channels[i]] = driveFreqs[ch.Index]

		case MeasureChannel:
			if ch.Index >= len(measFreqs) {
				return nil, fmt.Errorf("%w: MeasureChannel index %d is out of bounds", ErrLookup, ch.Index)
			}
			freqs[channels[i]] = measFreqs[ch.Index]

		case ControlChannel:
			if ch.Index >= len(uChannelLO) || len(uChannelLO[ch.Index]) == 0 {
				return nil, fmt.Errorf(
					"%w: ControlChannel index %d has no registered local oscillator entries",
					ErrLookup, ch.Index,
				)
			}
			freq := 0.0
			for _, lo := range uChannelLO[ch.Index] {
				if lo.Q < 0 || lo.Q >= len(driveFreqs) {
					return nil, fmt.Errorf(
						"%w: ControlChannel index %d references qubit %d with no drive frequency",
						ErrLookup, ch.Index, lo.Q,
					)
				}
				freq += lo.Scale * driveFreqs[lo.Q]
			}
			freqs[channels[i]] = freq
		}
	}

	return freqs, nil
}
