package bridge

import (
	"errors"
	"testing"

	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/touch"
)

// scriptedTouch は順番にサンプルを返す。尽きたら最後の値を返し続ける
type scriptedTouch struct {
	samples []touch.Sample
	errs    []error
	i       int
}

func (s *scriptedTouch) Begin() error { return nil }

func (s *scriptedTouch) Scan() (touch.Sample, error) {
	i := min(s.i, len(s.samples)-1)
	s.i++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.samples[i], err
}

func contact(x, y int) touch.Sample {
	var s touch.Sample
	s.Count = 1
	s.Contacts[0] = touch.Contact{X: x, Y: y, Weight: 20}
	return s
}

func TestPollPressThenRelease(t *testing.T) {
	ctrl := &scriptedTouch{samples: []touch.Sample{contact(50, 100), {}}}
	r := NewReconciler(ctrl, nil)

	var got []Transition
	r.OnTransition(func(tr Transition) { got = append(got, tr) })

	want := geometry.Transform(geometry.Point{X: 50, Y: 100})
	ev := r.Poll()
	if ev.State != Pressed || ev.X != want.X || ev.Y != want.Y {
		t.Fatalf("first poll = %+v, want pressed at %v", ev, want)
	}
	ev = r.Poll()
	if ev.State != Released {
		t.Fatalf("second poll = %+v, want released", ev)
	}

	if len(got) != 2 || got[0].To != Pressed || got[1].To != Released || got[1].From != Pressed {
		t.Errorf("transitions = %+v", got)
	}
	if got[0].Point != want {
		t.Errorf("transition point = %v, want %v", got[0].Point, want)
	}
}

func TestPollIdempotent(t *testing.T) {
	ctrl := &scriptedTouch{samples: []touch.Sample{contact(10, 20)}}
	r := NewReconciler(ctrl, nil)

	transitions := 0
	r.OnTransition(func(Transition) { transitions++ })

	a := r.Poll()
	b := r.Poll()
	if a != b {
		t.Errorf("polls differ: %+v vs %+v", a, b)
	}
	if transitions != 1 {
		t.Errorf("transitions = %d, want 1 (edge only)", transitions)
	}
}

func TestPollInitialReleased(t *testing.T) {
	r := NewReconciler(&scriptedTouch{samples: []touch.Sample{{}}}, nil)
	if r.State() != Released {
		t.Fatal("initial state should be released")
	}
	transitions := 0
	r.OnTransition(func(Transition) { transitions++ })
	if ev := r.Poll(); ev.State != Released {
		t.Errorf("poll = %+v", ev)
	}
	if transitions != 0 {
		t.Error("released -> released must not record a transition")
	}
}

func TestPollZeroCountAlwaysReleased(t *testing.T) {
	ctrl := &scriptedTouch{samples: []touch.Sample{contact(1, 1), {}, contact(2, 2), {}, {}}}
	r := NewReconciler(ctrl, nil)
	for i := 0; i < 5; i++ {
		ev := r.Poll()
		wantPressed := i == 0 || i == 2
		if (ev.State == Pressed) != wantPressed {
			t.Errorf("poll %d = %v", i, ev.State)
		}
	}
}

func TestPollReadErrorFailsOpen(t *testing.T) {
	ctrl := &scriptedTouch{
		samples: []touch.Sample{contact(5, 5), contact(5, 5)},
		errs:    []error{nil, errors.New("i2c nack")},
	}
	r := NewReconciler(ctrl, nil)
	if ev := r.Poll(); ev.State != Pressed {
		t.Fatalf("first poll = %+v", ev)
	}
	if ev := r.Poll(); ev.State != Released {
		t.Errorf("read error should release, got %+v", ev)
	}
	if s := r.Status(); s.ReadErrors != 1 || s.Transitions != 2 {
		t.Errorf("status = %+v", s)
	}
}

func TestPollUsesFirstContactOnly(t *testing.T) {
	s := contact(30, 40)
	s.Count = 2
	s.Contacts[1] = touch.Contact{X: 200, Y: 300}
	r := NewReconciler(&scriptedTouch{samples: []touch.Sample{s}}, nil)

	want := geometry.Transform(geometry.Point{X: 30, Y: 40})
	if ev := r.Poll(); ev.X != want.X || ev.Y != want.Y {
		t.Errorf("poll = %+v, want %v", ev, want)
	}
}

func TestStatusSnapshot(t *testing.T) {
	r := NewReconciler(&scriptedTouch{samples: []touch.Sample{contact(0, 0)}}, nil)
	r.Poll()
	s := r.Status()
	if s.Current.State != Pressed || s.Last == nil || s.Last.To != Pressed {
		t.Fatalf("status = %+v", s)
	}
	s.Last.To = Released
	if r.Status().Last.To != Pressed {
		t.Error("Status returned a shared pointer")
	}
}

func TestPointerStateText(t *testing.T) {
	b, _ := Pressed.MarshalText()
	if string(b) != "pressed" || Released.String() != "released" {
		t.Errorf("text = %s / %s", b, Released)
	}
}
