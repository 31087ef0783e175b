// Package demo は起動時に表示するデモ画面。
// 中央のラベル、タッチ位置のマーカー、最下段のステータス行を描く
package demo

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/char5742/tft-touch-bridge/internal/bridge"
	"github.com/char5742/tft-touch-bridge/internal/engine"
	"github.com/char5742/tft-touch-bridge/internal/geometry"
)

// DefaultText は中央に表示するラベル
const DefaultText = "Hello Go and TFT!"

const (
	labelScale   = 2
	markerRadius = 6
	statusMargin = 4
)

var (
	colorBackground = engine.RGB565(0x10, 0x18, 0x30)
	colorLabel      = engine.RGB565(0xFF, 0xFF, 0xFF)
	colorStatus     = engine.RGB565(0x90, 0xC0, 0xFF)
	colorMarker     = engine.RGB565(0xFF, 0x50, 0x30)
)

// label はマスク画像と画面上の位置を持つ1行のテキスト
type label struct {
	mask  *image.Alpha
	rect  image.Rectangle
	scale int
}

// newLabel は basicfont で text を描画したマスクを作る
func newLabel(text string, scale int) *label {
	face := basicfont.Face7x13
	m := face.Metrics()
	w := font.MeasureString(face, text).Ceil()
	h := m.Height.Ceil()
	mask := image.NewAlpha(image.Rect(0, 0, max(w, 1), h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(text)
	return &label{mask: mask, scale: scale}
}

func (l *label) size() (w, h int) {
	b := l.mask.Bounds()
	return b.Dx() * l.scale, b.Dy() * l.scale
}

// at は画面座標 (x, y) がラベルの文字部分かを返す
func (l *label) at(x, y int) bool {
	p := image.Pt(x, y)
	if !p.In(l.rect) {
		return false
	}
	return l.mask.AlphaAt((x-l.rect.Min.X)/l.scale, (y-l.rect.Min.Y)/l.scale).A >= 0x80
}

func (l *label) area() geometry.Area {
	return geometry.Area{X1: l.rect.Min.X, Y1: l.rect.Min.Y, X2: l.rect.Max.X - 1, Y2: l.rect.Max.Y - 1}
}

// Scene はデモ画面。engine.Scene を実装する
type Scene struct {
	width   int
	height  int
	title   *label
	status  *label
	pressed bool
	marker  geometry.Point
	touches int
}

// New は width x height の画面に text を中央寄せで表示するシーンを作成する
func New(width, height int, text string) *Scene {
	s := &Scene{width: width, height: height}
	s.title = newLabel(text, labelScale)
	w, h := s.title.size()
	x := (width - w) / 2
	y := (height - h) / 2
	s.title.rect = image.Rect(x, y, x+w, y+h)
	s.setStatus()
	return s
}

// Touches は押下された回数を返す
func (s *Scene) Touches() int {
	return s.touches
}

func (s *Scene) statusText() string {
	if s.pressed {
		return fmt.Sprintf("touch %d,%d  count %d", s.marker.X, s.marker.Y, s.touches)
	}
	return fmt.Sprintf("released  count %d", s.touches)
}

// setStatus はステータス行を作り直す
func (s *Scene) setStatus() {
	s.status = newLabel(s.statusText(), 1)
	w, h := s.status.size()
	y := s.height - h - statusMargin
	s.status.rect = image.Rect(statusMargin, y, statusMargin+w, y+h)
}

// statusRow はステータス行の全幅。文字数が変わっても古い文字が残らないようにする
func (s *Scene) statusRow() geometry.Area {
	a := s.status.area()
	return geometry.Area{X1: 0, Y1: a.Y1, X2: s.width - 1, Y2: a.Y2}
}

func (s *Scene) markerArea(p geometry.Point) geometry.Area {
	return geometry.Area{
		X1: p.X - markerRadius,
		Y1: p.Y - markerRadius,
		X2: p.X + markerRadius,
		Y2: p.Y + markerRadius,
	}
}

func (s *Scene) Render(area geometry.Area, dst []uint16) {
	i := 0
	for y := area.Y1; y <= area.Y2; y++ {
		for x := area.X1; x <= area.X2; x++ {
			dst[i] = s.colorAt(x, y)
			i++
		}
	}
}

func (s *Scene) colorAt(x, y int) uint16 {
	if s.pressed {
		dx, dy := x-s.marker.X, y-s.marker.Y
		if dx*dx+dy*dy <= markerRadius*markerRadius {
			return colorMarker
		}
	}
	if s.title.at(x, y) {
		return colorLabel
	}
	if s.status.at(x, y) {
		return colorStatus
	}
	return colorBackground
}

// Pointer は押下・移動・解放のたびにマーカーとステータス行を更新する
func (s *Scene) Pointer(ev bridge.PointerEvent) []geometry.Area {
	pressed := ev.State == bridge.Pressed
	p := geometry.Point{X: ev.X, Y: ev.Y}
	if pressed == s.pressed && (!pressed || p == s.marker) {
		return nil
	}

	var dirty []geometry.Area
	if s.pressed {
		dirty = append(dirty, s.markerArea(s.marker))
	}
	if pressed {
		if !s.pressed {
			s.touches++
		}
		s.marker = p
		dirty = append(dirty, s.markerArea(p))
	}
	s.pressed = pressed

	old := s.statusRow()
	s.setStatus()
	dirty = append(dirty, old, s.statusRow())
	return dirty
}
