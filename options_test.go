package dynamics

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOptionsValidate(t *testing.T) {
	Convey("Given the default options", t, func() {
		opts := DefaultOptions()

		Convey("They should be valid for any dimension", func() {
			So(opts.Validate(2), ShouldBeNil)
			So(opts.Validate(6), ShouldBeNil)
			So(opts.Shots, ShouldEqual, 1024)
			So(opts.MeasLevel, ShouldEqual, 2)
			So(opts.MeasReturn, ShouldEqual, MeasReturnAvg)
			So(opts.IQWidth, ShouldEqual, 0.2)
			So(opts.MaxOutcomeLevel, ShouldEqual, 1)
			So(opts.Memory, ShouldBeTrue)
		})

		Convey("With should return an edited copy", func() {
			next, err := opts.With(4, WithShots(10), WithSubsystemDims(2, 2), WithSeed(3))
			So(err, ShouldBeNil)
			So(next.Shots, ShouldEqual, 10)
			So(next.SubsystemDims, ShouldResemble, []int{2, 2})
			So(*next.SeedSimulator, ShouldEqual, uint64(3))
			So(opts.Shots, ShouldEqual, 1024)
			So(opts.SubsystemDims, ShouldBeNil)
		})

		Convey("Setters should not alias caller slices", func() {
			dims := []int{2, 2}
			next, err := opts.With(4, WithSubsystemDims(dims...))
			So(err, ShouldBeNil)
			dims[0] = 4
			So(next.SubsystemDims, ShouldResemble, []int{2, 2})
		})

		cases := []struct {
			name string
			opt  Option
			text string
		}{
			{"inconsistent subsystem_dims", WithSubsystemDims(2, 3), "inconsistent"},
			{"zero max_outcome_level", WithMaxOutcomeLevel(0), "max_outcome_level must be a positive integer"},
			{"meas_level 0", WithMeasLevel(0), "only meas_level 1 and 2 are supported"},
			{"unknown meas_return", WithMeasReturn("sum"), "meas_return must be either 'single' or 'avg'"},
			{"non-positive iq_width", WithIQWidth(0), "iq_width must be a positive float"},
			{"malformed iq_centers", WithIQCenters([][][]float64{{{1, 0, 0}, {0, 1}}}), "iq_centers option must be either nil"},
			{"misshaped iq_centers", WithIQCenters([][][]float64{{{1, 0}}}), "iq_centers option is not consistent"},
			{"operator initial_state", WithInitialState(NewOperator(Identity(2))), "initial_state must be either"},
			{"mis-sized initial_state", WithInitialState(BasisState(3, 0)), "initial_state must be either"},
			{"nil experiment_result_function", WithExperimentResultFunction(nil), "experiment_result_function must be callable"},
			{"typed nil experiment_result_function", WithExperimentResultFunction(ExperimentResultFunc(nil)), "experiment_result_function must be callable"},
			{"negative control channel", WithControlChannelMap(map[QubitPair]int{{0, 1}: -1}), "control_channel_map values must be non-negative"},
			{"zero shots", WithShots(0), "shots must be a positive integer"},
		}

		for _, tc := range cases {
			Convey("It should reject "+tc.name, func() {
				next, err := opts.With(2, tc.opt)
				So(errors.Is(err, ErrConfiguration), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, tc.text)
				So(next, ShouldResemble, Options{})
			})
		}

		Convey("It should accept a density matrix initial state", func() {
			rho := DensityMatrixFromStatevector(BasisState(2, 1))
			_, err := opts.With(2, WithInitialState(rho))
			So(err, ShouldBeNil)
		})

		Convey("It should accept consistent iq_centers", func() {
			_, err := opts.With(4, WithSubsystemDims(2, 2), WithIQCenters(DefaultIQCenters([]int{2, 2})))
			So(err, ShouldBeNil)
		})
	})
}
