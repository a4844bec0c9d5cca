package geofence

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var square = orb.Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}}

func TestRingContainsSquare(t *testing.T) {
	if !ringContains(square, orb.Point{5, 5}) {
		t.Error("(5,5) should be inside")
	}
	if ringContains(square, orb.Point{15, 15}) {
		t.Error("(15,15) should be outside")
	}
}

func TestRingContainsIgnoresWindingAndClosure(t *testing.T) {
	ccw := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	closed := orb.Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}
	for _, r := range []orb.Ring{square, ccw, closed} {
		if !ringContains(r, orb.Point{2, 8}) {
			t.Errorf("ring %v: (2,8) should be inside", r)
		}
		if ringContains(r, orb.Point{-1, 5}) {
			t.Errorf("ring %v: (-1,5) should be outside", r)
		}
	}
}

func TestRingContainsBoundaryIsStable(t *testing.T) {
	for _, pt := range []orb.Point{{0, 5}, {10, 5}, {5, 0}, {5, 10}, {0, 0}, {10, 10}} {
		first := ringContains(square, pt)
		for i := 0; i < 5; i++ {
			if got := ringContains(square, pt); got != first {
				t.Fatalf("point %v: result changed from %v to %v", pt, first, got)
			}
		}
	}
}

func TestRingContainsMatchesPlanarOnConcaveRing(t *testing.T) {
	// U 形：开口朝上
	u := orb.Ring{{0, 0}, {9, 0}, {9, 9}, {6, 9}, {6, 3}, {3, 3}, {3, 9}, {0, 9}}
	for x := -1.5; x < 10; x++ {
		for y := -1.5; y < 10; y++ {
			pt := orb.Point{x, y}
			if got, want := ringContains(u, pt), planar.RingContains(u, pt); got != want {
				t.Errorf("point %v: ringContains = %v, planar = %v", pt, got, want)
			}
		}
	}
}

func TestRingContainsDegenerate(t *testing.T) {
	if ringContains(orb.Ring{{0, 0}, {1, 1}}, orb.Point{0.5, 0.5}) {
		t.Error("two-vertex ring must not contain anything")
	}
}
