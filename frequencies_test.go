package dynamics

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func calibrationFixture() (*Configuration, *Defaults) {
	defaults := &Defaults{
		QubitFreqEst: []float64{0.343, 1.131, 2.1232, 3.3534, 4.123, 5.3532},
		MeasFreqEst:  []float64{0.23432, 1.543, 2.543, 3.543, 4.1321, 5.5433},
	}
	config := &Configuration{
		UChannelLO: [][]UChannelLO{
			{{Q: 0, Scale: 1.0}, {Q: 1, Scale: -1.0}},
			{{Q: 3, Scale: 2.1}},
			{{Q: 4, Scale: 1.1}, {Q: 2, Scale: -1.1}},
		},
	}
	return config, defaults
}

func TestChannelFrequencies(t *testing.T) {
	Convey("Given legacy configuration and defaults", t, func() {
		config, defaults := calibrationFixture()

		Convey("It should resolve drive channels", func() {
			freqs, err := ChannelFrequencies(nil, config, defaults, []string{"d0", "d1", "d2"})
			So(err, ShouldBeNil)
			So(freqs, ShouldResemble, map[string]float64{
				"d0": 0.343, "d1": 1.131, "d2": 2.1232,
			})
		})

		Convey("It should resolve drive and measure channels", func() {
			freqs, err := ChannelFrequencies(nil, config, defaults, []string{"d0", "d1", "d2", "m0", "m3"})
			So(err, ShouldBeNil)
			So(freqs, ShouldResemble, map[string]float64{
				"d0": 0.343, "d1": 1.131, "d2": 2.1232, "m0": 0.23432, "m3": 3.543,
			})
		})

		Convey("It should resolve control channels as weighted sums", func() {
			freqs, err := ChannelFrequencies(nil, config, defaults, []string{"d0", "d1", "d2", "u1", "u2"})
			So(err, ShouldBeNil)
			So(freqs, ShouldHaveLength, 5)
			So(freqs["u1"], ShouldAlmostEqual, 2.1*3.3534, 1e-12)
			So(freqs["u2"], ShouldAlmostEqual, 1.1*4.123-1.1*2.1232, 1e-12)
		})

		Convey("It should be a pure function of its inputs", func() {
			channels := []string{"d0", "m1", "u0"}
			first, err := ChannelFrequencies(nil, config, defaults, channels)
			So(err, ShouldBeNil)
			second, err := ChannelFrequencies(nil, config, defaults, channels)
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})

		Convey("It should name a control channel with no local oscillators", func() {
			_, err := ChannelFrequencies(nil, config, defaults, []string{"u4"})
			So(errors.Is(err, ErrLookup), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "ControlChannel index 4")
		})

		Convey("It should name out of bounds drive and measure indices", func() {
			_, err := ChannelFrequencies(nil, config, defaults, []string{"d10"})
			So(errors.Is(err, ErrLookup), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "DriveChannel index 10")

			_, err = ChannelFrequencies(nil, config, defaults, []string{"m6"})
			So(errors.Is(err, ErrLookup), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "MeasureChannel index 6")
		})
	})

	Convey("Given missing calibration sources", t, func() {
		Convey("It should reject unrecognized channels", func() {
			_, err := ChannelFrequencies(nil, &Configuration{}, &Defaults{}, []string{"r1"})
			So(errors.Is(err, ErrConfiguration), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "unrecognized channel type")
		})

		Convey("It should fail drive channels without frequencies", func() {
			_, err := ChannelFrequencies(nil, &Configuration{}, nil, []string{"d0"})
			So(errors.Is(err, ErrLookup), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "frequencies not available in target or defaults")
		})

		Convey("It should fail measure channels without estimates", func() {
			_, err := ChannelFrequencies(nil, &Configuration{}, nil, []string{"m0"})
			So(errors.Is(err, ErrLookup), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "defaults does not have")
		})

		Convey("It should fail control channels without u_channel_lo", func() {
			_, defaults := calibrationFixture()
			_, err := ChannelFrequencies(nil, &Configuration{}, defaults, []string{"u0"})
			So(errors.Is(err, ErrLookup), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "u_channel_lo")
		})

		Convey("It should need no defaults when the target has qubit properties", func() {
			target := &Target{
				Dt:              0.1,
				QubitProperties: []QubitProperties{{Frequency: 0.0}, {Frequency: 1.0}},
			}
			freqs, err := ChannelFrequencies(target, &Configuration{UChannelLO: [][]UChannelLO{}}, nil, []string{"d0", "d1"})
			So(err, ShouldBeNil)
			So(freqs, ShouldResemble, map[string]float64{"d0": 0.0, "d1": 1.0})
		})
	})
}
