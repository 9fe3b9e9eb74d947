package scratch_test

import (
	"testing"

	"github.com/okian/raspa/internal/domain/scratch"
	. "github.com/smartystreets/goconvey/convey"
)

// scratchSpan uncovers cells [from, to) of a 1-cell-high strip using
// radius-1 scratches (each sample clears x-1..x+1 within bounds).
func scratchSpan(d *scratch.Detector, from, to int) {
	for x := from + 1; x < to; x += 3 {
		d.Scratch(x, 0)
	}
}

func TestDetectorCoverage(t *testing.T) {
	Convey("Given an untouched surface", t, func() {
		d := scratch.New(100, 1, scratch.WithRadius(1))

		Convey("Then coverage should be zero", func() {
			So(d.Coverage(), ShouldEqual, 0)
			So(d.Revealed(), ShouldBeFalse)
		})
	})

	Convey("Given a fully uncovered surface", t, func() {
		d := scratch.New(10, 10, scratch.WithRadius(20))
		d.Scratch(5, 5)

		Convey("Then coverage should be 100", func() {
			So(d.Coverage(), ShouldEqual, 100)
		})
	})

	Convey("Given repeated scratches at the same point", t, func() {
		d := scratch.New(100, 1, scratch.WithRadius(1))
		d.Scratch(10, 0)
		first := d.Coverage()
		d.Scratch(10, 0)
		d.Scratch(10, 0)

		Convey("Then coverage should not increase", func() {
			So(d.Coverage(), ShouldEqual, first)
		})
	})

	Convey("Given scratches near the surface edge", t, func() {
		d := scratch.New(100, 1, scratch.WithRadius(1))
		// Clipped at x=0; must not panic or wrap.
		d.Scratch(0, 0)
		d.Scratch(-5, 0)
		d.Scratch(99, 0)

		Convey("Then only in-bounds cells are uncovered", func() {
			So(d.Coverage(), ShouldBeLessThan, 5)
		})
	})
}

func TestDetectorReveal(t *testing.T) {
	Convey("Given a detector with the default 40% threshold", t, func() {
		fired := 0
		d := scratch.New(100, 1,
			scratch.WithRadius(1),
			scratch.WithRevealFunc(func() { fired++ }),
		)

		Convey("When coverage stays at the threshold", func() {
			exact := scratch.New(90, 1,
				scratch.WithRadius(1),
				scratch.WithRevealFunc(func() { fired++ }),
			)
			scratchSpan(exact, 0, 36) // 36 of 90 cells = exactly 40%
			coverage, revealed := exact.EndStroke()

			Convey("Then the reveal must not fire at exactly 40", func() {
				So(coverage, ShouldEqual, 40)
				So(revealed, ShouldBeFalse)
				So(fired, ShouldEqual, 0)
			})
		})

		Convey("When coverage crosses the threshold", func() {
			scratchSpan(d, 0, 45) // 45 cells uncovered
			So(d.Coverage(), ShouldEqual, 45)

			coverage, revealed := d.EndStroke()

			Convey("Then the reveal fires once and the surface clears", func() {
				So(revealed, ShouldBeTrue)
				So(coverage, ShouldEqual, 100)
				So(fired, ShouldEqual, 1)
				So(d.Coverage(), ShouldEqual, 100)
			})

			Convey("And further input is a no-op", func() {
				d.Scratch(50, 0)
				coverage, revealed := d.EndStroke()
				So(coverage, ShouldEqual, 100)
				So(revealed, ShouldBeTrue)
				So(fired, ShouldEqual, 1)
			})
		})

		Convey("When no reveal callback is configured", func() {
			quiet := scratch.New(10, 10, scratch.WithRadius(20))
			quiet.Scratch(5, 5)
			_, revealed := quiet.EndStroke()

			Convey("Then EndStroke still marks the reveal", func() {
				So(revealed, ShouldBeTrue)
				So(quiet.Revealed(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a detector with a custom threshold", t, func() {
		d := scratch.New(100, 1, scratch.WithRadius(1), scratch.WithThreshold(10))
		scratchSpan(d, 0, 12)

		Convey("Then the custom threshold applies", func() {
			_, revealed := d.EndStroke()
			So(revealed, ShouldBeTrue)
		})
	})
}
