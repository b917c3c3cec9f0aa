package calcs

import (
	. "github.com/smartystreets/goconvey/convey"
	"testing"
)

func TestTranslate(t *testing.T) {
	Convey("end points map onto end points", t, func() {
		So(Translate(0, 0, 100, 0, 512), ShouldEqual, 0)
		So(Translate(100, 0, 100, 0, 512), ShouldEqual, 512)
		So(Translate(1, 1, 100, 5, 512), ShouldEqual, 5)
	})

	Convey("mid points are linear", t, func() {
		So(Translate(50, 0, 100, 0, 512), ShouldEqual, 256)
		So(Translate(5, 0, 10, 10, 0), ShouldEqual, 5)
	})

	Convey("values outside the range extrapolate", t, func() {
		So(Translate(200, 0, 100, 0, 10), ShouldEqual, 20)
	})
}

func TestTranslateInt(t *testing.T) {
	Convey("results are rounded to nearest", t, func() {
		// 5 + 49 * 507 / 99 = 255.94
		So(TranslateInt(50, 1, 100, 5, 512, 0, 1000), ShouldEqual, 256)
		// 5 + 507 / 99 = 10.12
		So(TranslateInt(2, 1, 100, 5, 512, 0, 1000), ShouldEqual, 10)
	})

	Convey("results are clamped", t, func() {
		So(TranslateInt(100, 1, 100, 5, 512, 0, 511), ShouldEqual, 511)
		So(TranslateInt(-10, 0, 100, 0, 512, 0, 511), ShouldEqual, 0)
	})
}
