package dynamics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// calibrationFile is the on-disk layout of device calibration data.
type calibrationFile struct {
	Dt           float64        `yaml:"dt"`
	QubitFreqEst []float64      `yaml:"qubit_freq_est"`
	MeasFreqEst  []float64      `yaml:"meas_freq_est"`
	UChannelLO   [][]UChannelLO `yaml:"u_channel_lo"`
}

// LoadCalibration reads a YAML calibration file, see ParseCalibration.
func LoadCalibration(path string) (*Configuration, *Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading calibration file %s: %v", ErrConfiguration, path, err)
	}
	return ParseCalibration(data)
}

/*
ParseCalibration decodes device calibration data:

	dt: 0.1
	qubit_freq_est: [5.0, 5.1]
	meas_freq_est: [6.5, 6.6]
	u_channel_lo:
	  - [{q: 0, scale: 1.0}, {q: 1, scale: -1.0}]

Lists missing from the document stay nil, which ChannelFrequencies reports as a missing
frequency source.
*/
func ParseCalibration(data []byte) (*Configuration, *Defaults, error) {
	var file calibrationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding calibration: %v", ErrConfiguration, err)
	}

	config := &Configuration{
		Dt:         file.Dt,
		UChannelLO: file.UChannelLO,
	}
	defaults := &Defaults{
		QubitFreqEst: file.QubitFreqEst,
		MeasFreqEst:  file.MeasFreqEst,
	}

	return config, defaults, nil
}
