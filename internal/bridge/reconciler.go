package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/logger"
	"github.com/char5742/tft-touch-bridge/internal/touch"
)

// PointerState はポインタの押下状態
type PointerState int

const (
	Released PointerState = iota
	Pressed
)

func (s PointerState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// MarshalText は JSON で状態名を出力するためのもの
func (s PointerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PointerEvent はエンジンに渡す入力。X, Y は Pressed のときだけ意味を持つ
type PointerEvent struct {
	State PointerState `json:"state"`
	X     int          `json:"x"`
	Y     int          `json:"y"`
}

// Transition は状態が変化したときの記録
type Transition struct {
	From   PointerState   `json:"from"`
	To     PointerState   `json:"to"`
	Point  geometry.Point `json:"point"`
	Sample touch.Sample   `json:"sample"`
	At     time.Time      `json:"at"`
}

// PointerStatus は診断用のスナップショット
type PointerStatus struct {
	Current     PointerEvent `json:"current"`
	Transitions uint64       `json:"transitions"`
	ReadErrors  uint64       `json:"read_errors"`
	Last        *Transition  `json:"last,omitempty"`
}

// Reconciler はタッチコントローラを1ティックに1回読み、ポインタ状態を決める。
// 状態は Reconciler 自身が持ち、初期値は Released
type Reconciler struct {
	ctrl      touch.Controller
	state     PointerState
	last      PointerEvent
	filter    *PointFilter
	observers []func(Transition)
	now       func() time.Time

	mutex  sync.Mutex
	status PointerStatus
}

// NewReconciler は新しい Reconciler を作成する。filter が nil なら平滑化しない
func NewReconciler(ctrl touch.Controller, filter *PointFilter) *Reconciler {
	return &Reconciler{
		ctrl:   ctrl,
		state:  Released,
		filter: filter,
		now:    time.Now,
	}
}

// OnTransition は状態変化の通知先を登録する。Poll より前に呼ぶこと
func (r *Reconciler) OnTransition(fn func(Transition)) {
	r.observers = append(r.observers, fn)
}

// SetFilter は平滑化フィルターを差し替える。nil で無効になる。Poll と同じゴルーチンから呼ぶこと
func (r *Reconciler) SetFilter(f *PointFilter) {
	r.filter = f
}

// State は現在の状態を返す
func (r *Reconciler) State() PointerState {
	return r.state
}

// ReadPointer はエンジンの入力ドライバとして Poll を呼ぶ
func (r *Reconciler) ReadPointer() PointerEvent {
	return r.Poll()
}

// Poll はコントローラを読み、現在のポインタ状態を返す。
// 読み取りエラーは接触なしとして扱う（押しっぱなしより取りこぼしのほうがまし）
func (r *Reconciler) Poll() PointerEvent {
	sample, err := r.ctrl.Scan()
	if err != nil {
		logger.L().Debug("タッチの読み取りに失敗しました", "err", err)
		r.mutex.Lock()
		r.status.ReadErrors++
		r.mutex.Unlock()
	}

	ev := PointerEvent{State: Released, X: r.last.X, Y: r.last.Y}
	var p geometry.Point
	if err == nil && sample.Count > 0 {
		c := sample.Contacts[0]
		p = geometry.Transform(geometry.Point{X: c.X, Y: c.Y})
		if r.filter != nil {
			p = r.filter.Filter(p)
		}
		ev = PointerEvent{State: Pressed, X: p.X, Y: p.Y}
	} else if r.filter != nil {
		r.filter.Reset()
	}

	if ev.State != r.state {
		r.transition(Transition{From: r.state, To: ev.State, Point: p, Sample: sample, At: r.now()})
	}
	r.state = ev.State
	r.last = ev

	r.mutex.Lock()
	r.status.Current = ev
	r.mutex.Unlock()
	return ev
}

func (r *Reconciler) transition(t Transition) {
	r.mutex.Lock()
	r.status.Transitions++
	last := t
	r.status.Last = &last
	r.mutex.Unlock()

	if t.To == Pressed {
		logger.L().Info(fmt.Sprintf("Touched X = %d Y = %d", t.Point.X, t.Point.Y))
		if geometry.ContactDump {
			dumpSample(t.Sample)
		}
	} else {
		logger.L().Info("Touch released")
	}

	for _, fn := range r.observers {
		fn(t)
	}
}

// dumpSample はコントローラが返した接触点の診断情報を出力する
func dumpSample(s touch.Sample) {
	l := logger.L()
	l.Info("touch status", "count", s.Count)
	for i, c := range s.Contacts {
		l.Info(fmt.Sprintf("touch %d", i+1),
			"event", c.Event, "id", c.ID,
			"x", c.X, "y", c.Y,
			"weight", c.Weight, "misc", c.Misc)
	}
}

// Status は診断用のスナップショットを返す
func (r *Reconciler) Status() PointerStatus {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	s := r.status
	if s.Last != nil {
		last := *s.Last
		s.Last = &last
	}
	return s
}
