package mirror

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/char5742/tft-touch-bridge/internal/bridge"
	"github.com/char5742/tft-touch-bridge/internal/event"
)

// decode は書き込まれたバイト列をイベントに戻す
func decode(t *testing.T, b []byte) []event.Event {
	t.Helper()
	size := binary.Size(event.Event{})
	if len(b)%size != 0 {
		t.Fatalf("%d bytes is not a whole number of events", len(b))
	}
	var out []event.Event
	r := bytes.NewReader(b)
	for r.Len() > 0 {
		var ev event.Event
		if err := binary.Read(r, binary.LittleEndian, &ev); err != nil {
			t.Fatal(err)
		}
		out = append(out, ev)
	}
	return out
}

func find(evs []event.Event, typ, code uint16) (int32, bool) {
	for _, ev := range evs {
		if ev.Type == typ && ev.Code == code {
			return ev.Value, true
		}
	}
	return 0, false
}

func TestUpdateSequence(t *testing.T) {
	var buf bytes.Buffer
	m := New(&buf)

	if err := m.Update(bridge.PointerEvent{State: bridge.Released}); err != nil || buf.Len() != 0 {
		t.Fatalf("idle release wrote %d bytes, err=%v", buf.Len(), err)
	}

	if err := m.Update(bridge.PointerEvent{State: bridge.Pressed, X: 219, Y: 50}); err != nil {
		t.Fatal(err)
	}
	down := decode(t, buf.Bytes())
	if v, _ := find(down, event.Key, event.BtnTouch); v != 1 {
		t.Errorf("BTN_TOUCH = %d", v)
	}
	if x, _ := find(down, event.Abs, event.AbsX); x != 219 {
		t.Errorf("ABS_X = %d", x)
	}
	if id, _ := find(down, event.Abs, event.AbsMtTrackingId); id <= 0 {
		t.Errorf("tracking id = %d", id)
	}
	if last := down[len(down)-1]; last.Type != event.Syn || last.Code != event.SynReport {
		t.Errorf("frame not terminated: %+v", last)
	}

	// 同じ位置の押しっぱなしは何も書かない
	buf.Reset()
	m.Update(bridge.PointerEvent{State: bridge.Pressed, X: 219, Y: 50})
	if buf.Len() != 0 {
		t.Errorf("held press wrote %d bytes", buf.Len())
	}

	m.Update(bridge.PointerEvent{State: bridge.Pressed, X: 220, Y: 51})
	move := decode(t, buf.Bytes())
	if _, ok := find(move, event.Key, event.BtnTouch); ok {
		t.Error("move re-sent BTN_TOUCH")
	}
	if y, _ := find(move, event.Abs, event.AbsMtPositionY); y != 51 {
		t.Errorf("move y = %d", y)
	}

	buf.Reset()
	m.Update(bridge.PointerEvent{State: bridge.Released, X: 220, Y: 51})
	up := decode(t, buf.Bytes())
	if v, _ := find(up, event.Key, event.BtnTouch); v != 0 {
		t.Errorf("release BTN_TOUCH = %d", v)
	}
	if id, _ := find(up, event.Abs, event.AbsMtTrackingId); id != -1 {
		t.Errorf("release tracking id = %d", id)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("EAGAIN") }

type constSource struct{ ev bridge.PointerEvent }

func (c constSource) ReadPointer() bridge.PointerEvent { return c.ev }

func TestReaderPassesThroughOnError(t *testing.T) {
	want := bridge.PointerEvent{State: bridge.Pressed, X: 1, Y: 2}
	r := New(failWriter{}).Wrap(constSource{want})
	if got := r.ReadPointer(); got != want {
		t.Errorf("ReadPointer = %+v", got)
	}
	if !r.failed {
		t.Error("write failure not recorded")
	}
}
