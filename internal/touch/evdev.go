package touch

import (
	"github.com/char5742/tft-touch-bridge/internal/event"
)

// evdevState は evdev のイベント列から1点目の接触状態を組み立てる。
// SYN_REPORT を受け取った時点の状態を確定値とする
type evdevState struct {
	slot      int32
	down      bool
	x, y      int
	pressure  uint8
	tracking  int32
	committed Sample
}

func newEvdevState() *evdevState {
	return &evdevState{tracking: -1}
}

func (s *evdevState) apply(ev event.Event) {
	switch ev.Type {
	case event.Abs:
		switch ev.Code {
		case event.AbsMtSlot:
			s.slot = ev.Value
		case event.AbsX:
			s.x = int(ev.Value)
		case event.AbsY:
			s.y = int(ev.Value)
		case event.AbsMtPositionX:
			if s.slot == 0 {
				s.x = int(ev.Value)
			}
		case event.AbsMtPositionY:
			if s.slot == 0 {
				s.y = int(ev.Value)
			}
		case event.AbsMtPressure:
			if s.slot == 0 {
				s.pressure = uint8(min(ev.Value, 255))
			}
		case event.AbsMtTrackingId:
			if s.slot == 0 {
				// -1 は指が離れたことを示す
				s.tracking = ev.Value
				s.down = ev.Value >= 0
			}
		}
	case event.Key:
		if ev.Code == event.BtnTouch {
			s.down = ev.Value != 0
		}
	case event.Syn:
		if ev.Code == event.SynReport {
			s.commit()
		}
	}
}

func (s *evdevState) commit() {
	var out Sample
	if s.down {
		out.Count = 1
		out.Contacts[0] = Contact{
			X:      s.x,
			Y:      s.y,
			ID:     uint8(max(s.tracking, 0)),
			Weight: s.pressure,
		}
	}
	s.committed = out
}
