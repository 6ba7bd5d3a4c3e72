package dynamics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScheduleBuilding(t *testing.T) {
	Convey("Given an empty schedule", t, func() {
		s := NewSchedule("build")

		Convey("It should have no duration", func() {
			So(s.Duration(), ShouldEqual, 0)
			So(s.Channels(), ShouldBeEmpty)
		})

		Convey("Append should start instructions when their channels are free", func() {
			s.Append(Play{Channel: D(0), Samples: Constant(10, 1)})
			s.Append(Play{Channel: D(1), Samples: Constant(4, 1)})
			s.Append(Play{Channel: D(0), Samples: Constant(5, 1)})

			items := s.Instructions()
			So(items, ShouldHaveLength, 3)
			So(items[0].Start, ShouldEqual, 0)
			So(items[1].Start, ShouldEqual, 0)
			So(items[2].Start, ShouldEqual, 10)
			So(s.Duration(), ShouldEqual, 15)
			So(s.ChannelStop(D(1)), ShouldEqual, 4)
		})

		Convey("AppendSequential should start after everything", func() {
			s.Append(Play{Channel: D(0), Samples: Constant(10, 1)})
			s.AppendSequential(NewAcquire(1, 1, 1))

			items := s.Instructions()
			So(items[1].Start, ShouldEqual, 10)
			So(items[1].Stop(), ShouldEqual, 11)
			So(s.ChannelStart(A(1)), ShouldEqual, 10)
		})

		Convey("Phase instructions should take no time", func() {
			s.Append(ShiftPhase{Channel: D(0), Phase: 1})
			s.Append(SetPhase{Channel: D(0), Phase: 2})
			So(s.Duration(), ShouldEqual, 0)
		})

		Convey("memorySlotCount should follow the highest memory slot", func() {
			s.Insert(0, NewAcquire(1, 0, 2))
			s.Insert(0, NewRegisterAcquire(1, 1, 5))
			So(s.memorySlotCount(), ShouldEqual, 3)
		})

		Convey("Insert should clamp a negative start to zero", func() {
			s.Insert(-5, Play{Channel: D(0), Samples: Constant(3, 1)})
			So(s.Instructions()[0].Start, ShouldEqual, 0)
			So(s.Duration(), ShouldEqual, 3)
		})
	})
}

func TestScheduleAlignRight(t *testing.T) {
	Convey("Given a schedule of plays and an acquire", t, func() {
		s := NewSchedule("aligned").
			Insert(0, Play{Channel: D(0), Samples: Constant(100, 1)}).
			Insert(0, Play{Channel: D(1), Samples: Constant(50, 1)}).
			Insert(0, NewAcquire(1, 0, 0))

		Convey("It should end every channel together", func() {
			aligned := s.AlignRight()

			So(aligned.Duration(), ShouldEqual, 100)
			So(aligned.ChannelStart(D(0)), ShouldEqual, 0)
			So(aligned.ChannelStart(D(1)), ShouldEqual, 50)
			So(aligned.ChannelStart(A(0)), ShouldEqual, 99)
		})

		Convey("It should chain instructions sharing a channel", func() {
			s.Insert(0, Play{Channel: D(1), Samples: Constant(10, 1)})
			aligned := s.AlignRight()

			So(aligned.ChannelStop(D(1)), ShouldEqual, 100)
			So(aligned.ChannelStart(D(1)), ShouldEqual, 40)
		})

		Convey("It should leave the original untouched", func() {
			s.AlignRight()
			So(s.ChannelStart(A(0)), ShouldEqual, 0)
		})
	})
}
