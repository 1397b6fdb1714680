package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStopSignal(t *testing.T) {
	Convey("Given a fresh stop signal", t, func() {
		stop := NewStopSignal()

		Convey("It starts lowered", func() {
			So(stop.Raised(), ShouldBeFalse)
		})

		Convey("Raise is monotonic", func() {
			stop.Raise()
			So(stop.Raised(), ShouldBeTrue)
			stop.Raise()
			So(stop.Raised(), ShouldBeTrue)
		})
	})
}

func TestPlateauDetector(t *testing.T) {
	Convey("Given a plateau detector seeded at cost 10.0", t, func() {
		p := newPlateauDetector(10.0)

		Convey("It does not trip before earlyReturnTimes consecutive flat checks", func() {
			for i := 0; i < earlyReturnTimes-1; i++ {
				So(p.check(10.0), ShouldBeFalse)
			}
		})

		Convey("It trips after earlyReturnTimes consecutive near-equal checks", func() {
			var tripped bool
			for i := 0; i < earlyReturnTimes; i++ {
				tripped = p.check(10.0)
			}
			So(tripped, ShouldBeTrue)
		})

		Convey("A cost change resets the counter", func() {
			p.check(10.0)
			p.check(9.0)
			for i := 0; i < earlyReturnTimes-1; i++ {
				So(p.check(9.0), ShouldBeFalse)
			}
		})
	})
}
