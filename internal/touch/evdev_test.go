package touch

import (
	"testing"

	"github.com/char5742/tft-touch-bridge/internal/event"
)

func feed(s *evdevState, evs ...event.Event) {
	for _, ev := range evs {
		s.apply(ev)
	}
}

func abs(code uint16, v int32) event.Event { return event.Event{Type: event.Abs, Code: code, Value: v} }
func syn() event.Event                     { return event.Event{Type: event.Syn, Code: event.SynReport} }

func TestEvdevMultiTouchFrame(t *testing.T) {
	s := newEvdevState()
	feed(s,
		abs(event.AbsMtSlot, 0),
		abs(event.AbsMtTrackingId, 7),
		abs(event.AbsMtPositionX, 50),
		abs(event.AbsMtPositionY, 100),
		abs(event.AbsMtPressure, 30),
	)
	if s.committed.Count != 0 {
		t.Fatal("state committed before SYN_REPORT")
	}
	feed(s, syn())

	want := Contact{X: 50, Y: 100, ID: 7, Weight: 30}
	if s.committed.Count != 1 || s.committed.Contacts[0] != want {
		t.Errorf("committed = %+v, want one contact %+v", s.committed, want)
	}

	// 2本目の指は1点目の座標を変えない
	feed(s, abs(event.AbsMtSlot, 1), abs(event.AbsMtPositionX, 200), syn())
	if s.committed.Contacts[0].X != 50 {
		t.Errorf("slot 1 overwrote slot 0: %+v", s.committed.Contacts[0])
	}

	feed(s, abs(event.AbsMtSlot, 0), abs(event.AbsMtTrackingId, -1), syn())
	if s.committed.Count != 0 {
		t.Errorf("lift not committed: %+v", s.committed)
	}
}

func TestEvdevSingleTouch(t *testing.T) {
	s := newEvdevState()
	feed(s,
		event.Event{Type: event.Key, Code: event.BtnTouch, Value: 1},
		abs(event.AbsX, 12),
		abs(event.AbsY, 34),
		syn(),
	)
	if s.committed.Count != 1 || s.committed.Contacts[0].X != 12 || s.committed.Contacts[0].Y != 34 {
		t.Errorf("committed = %+v", s.committed)
	}
	feed(s, event.Event{Type: event.Key, Code: event.BtnTouch, Value: 0}, syn())
	if s.committed.Count != 0 {
		t.Errorf("release not committed: %+v", s.committed)
	}
}
