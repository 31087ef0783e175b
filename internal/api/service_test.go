package api

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/char5742/tft-touch-bridge/internal/bridge"
	"github.com/char5742/tft-touch-bridge/internal/config"
	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/logger"
	"github.com/char5742/tft-touch-bridge/internal/panel"
	"github.com/char5742/tft-touch-bridge/internal/touch"
)

// fakePanel はメインループのゴルーチンからだけ呼ばれる
type fakePanel struct {
	rotation panel.Rotation
	inited   bool
	pixels   atomic.Int64
	closed   atomic.Bool
}

func (p *fakePanel) Init() error                        { p.inited = true; return nil }
func (p *fakePanel) SetRotation(r panel.Rotation) error { p.rotation = r; return nil }
func (p *fakePanel) BeginWrite() error                  { return nil }
func (p *fakePanel) SetAddrWindow(x, y, w, h int) error { return nil }
func (p *fakePanel) EndWrite() error                    { return nil }

func (p *fakePanel) PushColors(px []uint16, swap bool) error {
	p.pixels.Add(int64(len(px)))
	return nil
}

func (p *fakePanel) Close() error {
	p.closed.Store(true)
	return nil
}

// fakeTouch は press で押下状態を切り替えられるコントローラ
type fakeTouch struct {
	mutex   sync.Mutex
	pressed bool
	x, y    int
}

func (f *fakeTouch) Begin() error { return nil }

func (f *fakeTouch) Scan() (touch.Sample, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var s touch.Sample
	if f.pressed {
		s.Count = 1
		s.Contacts[0] = touch.Contact{X: f.x, Y: f.y}
	}
	return s, nil
}

func (f *fakeTouch) press(x, y int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.pressed, f.x, f.y = true, x, y
}

// identifiedTouch はチップIDを返す fakeTouch
type identifiedTouch struct{ fakeTouch }

func (*identifiedTouch) ChipID() byte { return 0x64 }

func newFakeFactory(p *fakePanel, t *fakeTouch) HardwareFactory {
	return func(cfg *config.Config) (*Hardware, error) {
		return &Hardware{Panel: p, Touch: t, Closers: []io.Closer{p}}, nil
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tick.Interval = time.Millisecond
	return cfg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestServiceStartStop(t *testing.T) {
	p, tc := &fakePanel{}, &fakeTouch{}
	s := NewBridgeService(testConfig(), newFakeFactory(p, tc))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v", err)
	}
	if !p.inited || p.rotation != panel.Rotation270 {
		t.Errorf("panel setup: inited=%v rotation=%d", p.inited, p.rotation)
	}

	// 起動直後に全画面が一度描かれる
	waitFor(t, "first frame", func() bool { return p.pixels.Load() >= 320*240 })

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !p.closed.Load() {
		t.Error("hardware not closed after Stop")
	}
	if err := s.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop = %v", err)
	}
	st := s.Status()
	if st.Running || st.Flush.Frames < 10 || st.Ticks == 0 {
		t.Errorf("status after stop = %+v", st)
	}
}

func TestServiceTransitions(t *testing.T) {
	p, tc := &fakePanel{}, &fakeTouch{}
	s := NewBridgeService(testConfig(), newFakeFactory(p, tc))

	got := make(chan bridge.Transition, 4)
	s.OnTransition(func(tr bridge.Transition) { got <- tr })
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	tc.press(50, 100)
	want := geometry.Transform(geometry.Point{X: 50, Y: 100})
	select {
	case tr := <-got:
		if tr.To != bridge.Pressed || tr.Point != want {
			t.Errorf("transition = %+v", tr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no transition")
	}
	waitFor(t, "pointer status", func() bool { return s.Status().Pointer.Current.State == bridge.Pressed })
}

func TestServiceUpdateConfig(t *testing.T) {
	p, tc := &fakePanel{}, &fakeTouch{}
	s := NewBridgeService(testConfig(), newFakeFactory(p, tc))
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Touch.SmoothingFactor = 0.5
	s.UpdateConfig(cfg)
	waitFor(t, "config applied", func() bool {
		s.statusMutex.RLock()
		defer s.statusMutex.RUnlock()
		return s.cfg == cfg
	})
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	// 停止中の更新は次の起動で使われる
	stopped := testConfig()
	stopped.Panel.Rotation = 1
	s.UpdateConfig(stopped)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	if p.rotation != panel.Rotation90 {
		t.Errorf("rotation = %d after restart", p.rotation)
	}
}

func TestServiceOpenError(t *testing.T) {
	s := NewBridgeService(testConfig(), func(*config.Config) (*Hardware, error) {
		return nil, errors.New("no spi")
	})
	if err := s.Start(); err == nil {
		t.Fatal("expected open error")
	}
	if s.IsRunning() {
		t.Error("running after failed start")
	}
}

func TestServiceLogsChipID(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(&buf, "info")
	t.Cleanup(func() { logger.SetLogger(nil) })

	p := &fakePanel{}
	open := func(cfg *config.Config) (*Hardware, error) {
		return &Hardware{Panel: p, Touch: &identifiedTouch{}, Closers: []io.Closer{p}}, nil
	}
	s := NewBridgeService(testConfig(), open)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !strings.Contains(buf.String(), "chip_id=0x64") {
		t.Errorf("chip id not logged:\n%s", buf.String())
	}
}
