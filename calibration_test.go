package dynamics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const calibrationYAML = `
dt: 0.2
qubit_freq_est: [0.343, 1.131, 2.1232, 3.3534, 4.123, 5.3532]
meas_freq_est: [0.23432, 1.543, 2.543, 3.543, 4.1321, 5.5433]
u_channel_lo:
  - [{q: 0, scale: 1.0}, {q: 1, scale: -1.0}]
  - [{q: 3, scale: 2.1}]
  - [{q: 4, scale: 1.1}, {q: 2, scale: -1.1}]
`

func TestLoadCalibration(t *testing.T) {
	Convey("Given a calibration file", t, func() {
		path := filepath.Join(t.TempDir(), "calibration.yaml")
		So(os.WriteFile(path, []byte(calibrationYAML), 0o600), ShouldBeNil)

		Convey("It should decode the same data as the in-memory fixture", func() {
			config, defaults, err := LoadCalibration(path)
			So(err, ShouldBeNil)

			wantConfig, wantDefaults := calibrationFixture()
			So(config.Dt, ShouldEqual, 0.2)
			So(config.UChannelLO, ShouldResemble, wantConfig.UChannelLO)
			So(defaults, ShouldResemble, wantDefaults)
		})

		Convey("It should feed the frequency resolver", func() {
			config, defaults, err := LoadCalibration(path)
			So(err, ShouldBeNil)

			freqs, err := ChannelFrequencies(nil, config, defaults, []string{"u1"})
			So(err, ShouldBeNil)
			So(freqs["u1"], ShouldAlmostEqual, 2.1*3.3534, 1e-12)
		})
	})

	Convey("Given calibration data without measurement estimates", t, func() {
		config, defaults, err := ParseCalibration([]byte("qubit_freq_est: [5.0]\n"))
		So(err, ShouldBeNil)

		Convey("Measure channels should report the missing source", func() {
			_, err := ChannelFrequencies(nil, config, defaults, []string{"m0"})
			So(errors.Is(err, ErrLookup), ShouldBeTrue)
		})
	})

	Convey("Given malformed calibration data", t, func() {
		_, _, err := ParseCalibration([]byte("qubit_freq_est: {not: a list}\n"))
		So(errors.Is(err, ErrConfiguration), ShouldBeTrue)
	})
}
