// Package engine は保持モードの最小グラフィックエンジン。
// 無効化された領域だけを描画バッファに描き、表示ドライバへ渡す
package engine

import (
	"errors"
	"fmt"

	"github.com/char5742/tft-touch-bridge/internal/bridge"
	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/logger"
)

var (
	ErrNotInitialized = errors.New("engine: not initialized")
	ErrNoDrawBuffer   = errors.New("engine: draw buffer not registered")
)

// Flusher は描画済みの領域を受け取る表示側のコールバック。
// 転送が終わったら done を1回だけ呼ぶこと
type Flusher interface {
	Flush(area geometry.Area, pixels []uint16, done func())
}

// PointerReader はポインタ入力を読み取る入力側のコールバック
type PointerReader interface {
	ReadPointer() bridge.PointerEvent
}

// Scene は画面の内容を表す
type Scene interface {
	// Render は area の内容を行優先で dst に書き込む。len(dst) == area.Size()
	Render(area geometry.Area, dst []uint16)
	// Pointer はティックごとの入力を受け取り、再描画が必要な領域を返す
	Pointer(ev bridge.PointerEvent) []geometry.Area
}

// InputType は入力デバイスの種類
type InputType int

const (
	InputPointer InputType = iota + 1
)

// DisplayDriver は表示ドライバの登録情報
type DisplayDriver struct {
	HorRes  int
	VerRes  int
	Flusher Flusher
	DrawBuf *DrawBuffer
}

// InputDriver は入力ドライバの登録情報
type InputDriver struct {
	Type   InputType
	Reader PointerReader
}

// Engine はティックごとに入力を読み、無効領域を再描画する
type Engine struct {
	initialized bool
	drawBuf     *DrawBuffer
	display     *DisplayDriver
	inputs      []InputDriver
	scene       Scene
	dirty       []geometry.Area
	ready       chan struct{}
	flushes     uint64
}

// New は新しい Engine を作成する。使用前に Init を呼ぶこと
func New() *Engine {
	return &Engine{ready: make(chan struct{}, 1)}
}

// Init はエンジンの状態を初期化する
func (e *Engine) Init() {
	e.initialized = true
	e.drawBuf = nil
	e.display = nil
	e.inputs = nil
	e.scene = nil
	e.dirty = nil
	e.flushes = 0
}

// RegisterDrawBuffer は描画バッファを登録する
func (e *Engine) RegisterDrawBuffer(buf *DrawBuffer) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if buf == nil || buf.Capacity() == 0 {
		return errors.New("engine: empty draw buffer")
	}
	e.drawBuf = buf
	return nil
}

// RegisterDisplay は表示ドライバを登録する。描画バッファは最低1行分の容量が必要
func (e *Engine) RegisterDisplay(d DisplayDriver) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if d.HorRes <= 0 || d.VerRes <= 0 {
		return fmt.Errorf("engine: invalid resolution %dx%d", d.HorRes, d.VerRes)
	}
	if d.Flusher == nil {
		return errors.New("engine: display without flusher")
	}
	if d.DrawBuf == nil {
		d.DrawBuf = e.drawBuf
	}
	if d.DrawBuf == nil {
		return ErrNoDrawBuffer
	}
	if d.DrawBuf.Capacity() < d.HorRes {
		return fmt.Errorf("engine: draw buffer of %d pixels cannot hold a %d pixel row", d.DrawBuf.Capacity(), d.HorRes)
	}
	e.display = &d
	logger.L().Debug("表示ドライバを登録しました", "hor_res", d.HorRes, "ver_res", d.VerRes, "buffer", d.DrawBuf.Capacity())
	return nil
}

// RegisterInput は入力ドライバを登録する
func (e *Engine) RegisterInput(d InputDriver) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if d.Type != InputPointer {
		return fmt.Errorf("engine: unsupported input type %d", d.Type)
	}
	if d.Reader == nil {
		return errors.New("engine: input without reader")
	}
	e.inputs = append(e.inputs, d)
	return nil
}

// SetScene は表示するシーンを設定し、画面全体を無効化する
func (e *Engine) SetScene(s Scene) {
	e.scene = s
	if e.display != nil {
		e.Invalidate(geometry.Area{X1: 0, Y1: 0, X2: e.display.HorRes - 1, Y2: e.display.VerRes - 1})
	}
}

// Invalidate は領域を再描画待ちにする。画面外は切り取り、重なる領域はまとめる
func (e *Engine) Invalidate(a geometry.Area) {
	if e.display == nil {
		return
	}
	screen := geometry.Area{X1: 0, Y1: 0, X2: e.display.HorRes - 1, Y2: e.display.VerRes - 1}
	a, ok := a.Intersect(screen)
	if !ok {
		return
	}

	// 合体した結果がさらに別の領域と重なることがあるため、変化がなくなるまで繰り返す
	for merged := true; merged; {
		merged = false
		for i, d := range e.dirty {
			if _, hit := d.Intersect(a); hit {
				a = a.Union(d)
				e.dirty = append(e.dirty[:i], e.dirty[i+1:]...)
				merged = true
				break
			}
		}
	}
	e.dirty = append(e.dirty, a)
}

// Dirty は再描画待ちの領域のコピーを返す
func (e *Engine) Dirty() []geometry.Area {
	return append([]geometry.Area(nil), e.dirty...)
}

// Flushes はこれまでに Flusher を呼んだ回数を返す
func (e *Engine) Flushes() uint64 {
	return e.flushes
}

// Process は1ティック分の処理を行う。入力を読み、無効領域を描画して転送する
func (e *Engine) Process() {
	if !e.initialized || e.display == nil {
		return
	}

	for _, in := range e.inputs {
		ev := in.Reader.ReadPointer()
		if e.scene == nil {
			continue
		}
		for _, a := range e.scene.Pointer(ev) {
			e.Invalidate(a)
		}
	}

	if e.scene == nil || len(e.dirty) == 0 {
		return
	}
	dirty := e.dirty
	e.dirty = nil
	for _, a := range dirty {
		e.refresh(a)
	}
}

// refresh は領域を描画バッファに収まる帯に分けて描画・転送する
func (e *Engine) refresh(a geometry.Area) {
	buf := e.display.DrawBuf
	rows := buf.Capacity() / a.Width()
	for y := a.Y1; y <= a.Y2; y += rows {
		band := geometry.Area{X1: a.X1, Y1: y, X2: a.X2, Y2: min(y+rows-1, a.Y2)}
		px := buf.pixels[:band.Size()]
		e.scene.Render(band, px)
		e.flush(band, px)
	}
}

// flush は完了通知を待ってから戻る。完了前にバッファへ描き込むことはない
func (e *Engine) flush(band geometry.Area, px []uint16) {
	e.display.Flusher.Flush(band, px, e.flushReady)
	<-e.ready
	e.flushes++
}

func (e *Engine) flushReady() {
	select {
	case e.ready <- struct{}{}:
	default:
	}
}
