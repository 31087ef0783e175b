package bridge

import (
	"testing"

	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/touch"
)

func TestPointFilterWarmUp(t *testing.T) {
	pf := NewPointFilter(0.5, 2)
	for _, p := range []geometry.Point{{X: 10, Y: 10}, {X: 20, Y: 20}} {
		if got := pf.Filter(p); got != p {
			t.Errorf("warm-up Filter(%v) = %v", p, got)
		}
	}
	// 3回目から平均化される: 20*0.5 + 40*0.5 = 30
	if got := pf.Filter(geometry.Point{X: 40, Y: 40}); got != (geometry.Point{X: 30, Y: 30}) {
		t.Errorf("smoothed = %v", got)
	}
}

func TestPointFilterReset(t *testing.T) {
	pf := NewPointFilter(0.9, 0)
	pf.Filter(geometry.Point{X: 100, Y: 100})
	pf.Reset()
	if got := pf.Filter(geometry.Point{X: 5, Y: 5}); got != (geometry.Point{X: 5, Y: 5}) {
		t.Errorf("after reset = %v", got)
	}
}

func TestReconcilerResetsFilterOnRelease(t *testing.T) {
	ctrl := &scriptedTouch{samples: []touch.Sample{contact(0, 0), {}, contact(100, 100)}}
	r := NewReconciler(ctrl, NewPointFilter(0.9, 0))
	r.Poll()
	r.Poll()
	want := geometry.Transform(geometry.Point{X: 100, Y: 100})
	if ev := r.Poll(); ev.X != want.X || ev.Y != want.Y {
		t.Errorf("first press after release = %+v, want %v", ev, want)
	}
}
