// Package mirror は確定したポインタ状態を Linux の入力サブシステムへ
// 単点タッチスクリーンとして書き戻す。同じボード上のデスクトップからもパネルのタッチを使えるようにする
package mirror

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/char5742/tft-touch-bridge/internal/bridge"
	"github.com/char5742/tft-touch-bridge/internal/event"
	"github.com/char5742/tft-touch-bridge/internal/logger"
)

// Mirror はポインタ状態の変化を evdev のイベント列に変換して書き込む
type Mirror struct {
	w        io.Writer
	down     bool
	x, y     int
	tracking int32
	buf      bytes.Buffer
}

// New は w にイベントを書き込む Mirror を作成する
func New(w io.Writer) *Mirror {
	return &Mirror{w: w}
}

// Update は前回から変化があったときだけイベントを書き込む
func (m *Mirror) Update(ev bridge.PointerEvent) error {
	pressed := ev.State == bridge.Pressed
	switch {
	case pressed && !m.down:
		m.tracking++
		m.down, m.x, m.y = true, ev.X, ev.Y
		return m.emit([]event.Event{
			{Type: event.Abs, Code: event.AbsMtSlot, Value: 0},
			{Type: event.Abs, Code: event.AbsMtTrackingId, Value: m.tracking},
			{Type: event.Abs, Code: event.AbsMtPositionX, Value: int32(ev.X)},
			{Type: event.Abs, Code: event.AbsMtPositionY, Value: int32(ev.Y)},
			{Type: event.Abs, Code: event.AbsX, Value: int32(ev.X)},
			{Type: event.Abs, Code: event.AbsY, Value: int32(ev.Y)},
			{Type: event.Key, Code: event.BtnTouch, Value: 1},
			{Type: event.Syn, Code: event.SynReport, Value: 0},
		})
	case pressed && (ev.X != m.x || ev.Y != m.y):
		m.x, m.y = ev.X, ev.Y
		return m.emit([]event.Event{
			{Type: event.Abs, Code: event.AbsMtPositionX, Value: int32(ev.X)},
			{Type: event.Abs, Code: event.AbsMtPositionY, Value: int32(ev.Y)},
			{Type: event.Abs, Code: event.AbsX, Value: int32(ev.X)},
			{Type: event.Abs, Code: event.AbsY, Value: int32(ev.Y)},
			{Type: event.Syn, Code: event.SynReport, Value: 0},
		})
	case !pressed && m.down:
		m.down = false
		return m.emit([]event.Event{
			{Type: event.Abs, Code: event.AbsMtTrackingId, Value: -1},
			{Type: event.Key, Code: event.BtnTouch, Value: 0},
			{Type: event.Syn, Code: event.SynReport, Value: 0},
		})
	}
	return nil
}

// emit はイベント列を1回の書き込みで送る。uinput は途中で区切られた構造体を受け付けない
func (m *Mirror) emit(events []event.Event) error {
	m.buf.Reset()
	for _, ev := range events {
		if err := binary.Write(&m.buf, binary.LittleEndian, ev); err != nil {
			return fmt.Errorf("mirror: encode: %w", err)
		}
	}
	if _, err := m.w.Write(m.buf.Bytes()); err != nil {
		return fmt.Errorf("mirror: write: %w", err)
	}
	return nil
}

// PointerSource はエンジンの入力ドライバが読むポインタ
type PointerSource interface {
	ReadPointer() bridge.PointerEvent
}

// Reader は読み取ったポインタを Mirror にも流す入力ドライバ
type Reader struct {
	src    PointerSource
	mirror *Mirror
	failed bool
}

// Wrap は src の読み取り結果を書き戻す Reader を返す
func (m *Mirror) Wrap(src PointerSource) *Reader {
	return &Reader{src: src, mirror: m}
}

// ReadPointer は src の結果をそのまま返す。書き戻しの失敗は入力に影響させない
func (r *Reader) ReadPointer() bridge.PointerEvent {
	ev := r.src.ReadPointer()
	if err := r.mirror.Update(ev); err != nil {
		if !r.failed {
			logger.L().Warn("タッチの書き戻しに失敗しました", "err", err)
		}
		r.failed = true
	} else {
		r.failed = false
	}
	return ev
}
