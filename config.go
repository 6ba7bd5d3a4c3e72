package dynamics

import (
	"fmt"

	"github.com/spf13/viper"
)

// controlChannelEntry is one control_channel_map item in an options file.
type controlChannelEntry struct {
	Qubits  []int `mapstructure:"qubits"`
	Channel int   `mapstructure:"channel"`
}

/*
LoadOptions reads run options from a YAML, JSON or TOML file and returns them as
Options edits. Keys left out of the file leave the corresponding option untouched.

	shots: 2048
	meas_level: 2
	meas_return: single
	max_outcome_level: 2
	seed_simulator: 42
	subsystem_dims: [3]
	solver_options:
	  atol: 1e-10
	control_channel_map:
	  - qubits: [0, 1]
	    channel: 0
*/
func LoadOptions(path string) ([]Option, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading options file %s: %v", ErrConfiguration, path, err)
	}

	var opts []Option

	if v.IsSet("shots") {
		opts = append(opts, WithShots(v.GetInt("shots")))
	}
	if v.IsSet("meas_level") {
		opts = append(opts, WithMeasLevel(v.GetInt("meas_level")))
	}
	if v.IsSet("meas_return") {
		opts = append(opts, WithMeasReturn(MeasReturn(v.GetString("meas_return"))))
	}
	if v.IsSet("iq_width") {
		opts = append(opts, WithIQWidth(v.GetFloat64("iq_width")))
	}
	if v.IsSet("max_outcome_level") {
		opts = append(opts, WithMaxOutcomeLevel(v.GetInt("max_outcome_level")))
	}
	if v.IsSet("memory") {
		opts = append(opts, WithMemory(v.GetBool("memory")))
	}
	if v.IsSet("seed_simulator") {
		opts = append(opts, WithSeed(v.GetUint64("seed_simulator")))
	}
	if v.IsSet("subsystem_dims") {
		opts = append(opts, WithSubsystemDims(v.GetIntSlice("subsystem_dims")...))
	}

	if v.IsSet("solver_options") {
		solverOptions := DefaultSolverOptions()
		if err := v.UnmarshalKey("solver_options", &solverOptions); err != nil {
			return nil, fmt.Errorf("%w: decoding solver_options: %v", ErrConfiguration, err)
		}
		opts = append(opts, WithSolverOptions(solverOptions))
	}

	if v.IsSet("iq_centers") {
		var centers [][][]float64
		if err := v.UnmarshalKey("iq_centers", &centers); err != nil {
			return nil, fmt.Errorf("%w: decoding iq_centers: %v", ErrConfiguration, err)
		}
		opts = append(opts, WithIQCenters(centers))
	}

	if v.IsSet("control_channel_map") {
		var entries []controlChannelEntry
		if err := v.UnmarshalKey("control_channel_map", &entries); err != nil {
			return nil, fmt.Errorf("%w: decoding control_channel_map: %v", ErrConfiguration, err)
		}

		m := make(map[QubitPair]int, len(entries))
		for _, entry := range entries {
			if len(entry.Qubits) != 2 {
				return nil, fmt.Errorf(
					"%w: control_channel_map keys must be qubit pairs, got %v",
					ErrConfiguration, entry.Qubits,
				)
			}
			m[QubitPair{entry.Qubits[0], entry.Qubits[1]}] = entry.Channel
		}
		opts = append(opts, WithControlChannelMap(m))
	}

	return opts, nil
}
